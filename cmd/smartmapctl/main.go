package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	smclient "github.com/rbsteinm/SmartMap2/client"
	"github.com/rbsteinm/SmartMap2/entity"
	"github.com/rbsteinm/SmartMap2/internal/config"
	"github.com/rbsteinm/SmartMap2/internal/logger"
	"github.com/rbsteinm/SmartMap2/search"
)

var (
	apiFlag string
	dbFlag  string
	rootCmd = &cobra.Command{
		Use:   "smartmapctl",
		Short: "CLI client for the SmartMap API",
	}
)

func newClient() (*smclient.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if apiFlag != "" {
		cfg.ServerURL = apiFlag
	}
	if dbFlag != "" {
		cfg.DBPath = dbFlag
	}

	log := logger.New("smartmapctl").Level(cfg.Level())
	return smclient.New(cfg.ServerURL,
		smclient.WithLogger(log),
		smclient.WithDBPath(cfg.DBPath),
		smclient.WithHTTPTimeout(cfg.HTTPTimeout),
		smclient.WithSearchTTL(cfg.SearchTTL),
		smclient.WithNearThreshold(cfg.NearThreshold),
		smclient.WithDebugLogging(cfg.DebugHTTP),
	)
}

func withClient(run func(ctx context.Context, c *smclient.Client) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		if err := c.Warm(ctx); err != nil {
			return err
		}
		return run(ctx, c)
	}
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func printDisplayable(d entity.Displayable) {
	fmt.Printf("%8d  %-24s %s\n", d.ID(), d.Name(), d.Subtitle())
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "", "SmartMap API base URL (overrides SMARTMAP_SERVER_URL)")
	rootCmd.PersistentFlags().StringVarP(&dbFlag, "db", "d", "", "sqlite database path (overrides SMARTMAP_DB_PATH)")

	friendsCmd := &cobra.Command{
		Use:   "friends",
		Short: "List visible friends with their last positions",
		RunE: withClient(func(ctx context.Context, c *smclient.Client) error {
			for _, f := range c.Cache().VisibleFriends() {
				printDisplayable(f)
			}
			return nil
		}),
	}
	rootCmd.AddCommand(friendsCmd)

	userCmd := &cobra.Command{
		Use:   "user <id>",
		Short: "Show one user, fetching it if unknown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, c *smclient.Client) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				u, err := c.Cache().ResolveUser(ctx, id)
				if err != nil {
					return err
				}
				fmt.Printf("%d  %s (%s)\n", u.ID(), u.Name(), u.Kind())
				if !u.Location().IsZero() {
					fmt.Printf("    last seen %s at %.5f,%.5f\n",
						u.LastSeen().Format(time.RFC3339), u.Location().Latitude, u.Location().Longitude)
				}
				return nil
			})(cmd, args)
		},
	}
	rootCmd.AddCommand(userCmd)

	searchCmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search cached friends and events, and strangers online",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			online, _ := cmd.Flags().GetBool("online")
			return withClient(func(ctx context.Context, c *smclient.Client) error {
				for _, d := range c.Search().Search(args[0], search.All) {
					printDisplayable(d)
				}
				if online {
					users, err := c.Search().FindUsers(ctx, args[0])
					if err != nil {
						return err
					}
					for _, u := range users {
						printDisplayable(u)
					}
				}
				return nil
			})(cmd, args)
		},
	}
	searchCmd.Flags().BoolP("online", "o", false, "also search strangers on the server")
	rootCmd.AddCommand(searchCmd)

	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "Event operations",
	}
	nearCmd := &cobra.Command{
		Use:   "near",
		Short: "List public events around a position",
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, _ := cmd.Flags().GetFloat64("lat")
			lon, _ := cmd.Flags().GetFloat64("lon")
			radius, _ := cmd.Flags().GetFloat64("radius")
			return withClient(func(ctx context.Context, c *smclient.Client) error {
				pos := entity.Position{Latitude: lat, Longitude: lon, Time: time.Now()}
				events, err := c.Search().NearEvents(ctx, pos, radius)
				if err != nil {
					return err
				}
				for _, ev := range events {
					printDisplayable(ev)
				}
				return nil
			})(cmd, args)
		},
	}
	nearCmd.Flags().Float64("lat", 0, "latitude (required)")
	nearCmd.Flags().Float64("lon", 0, "longitude (required)")
	nearCmd.Flags().Float64("radius", 10000, "radius in metres")
	_ = nearCmd.MarkFlagRequired("lat")
	_ = nearCmd.MarkFlagRequired("lon")
	eventsCmd.AddCommand(nearCmd)
	rootCmd.AddCommand(eventsCmd)

	invitationsCmd := &cobra.Command{
		Use:   "invitations",
		Short: "Friend invitation operations",
	}
	invitationsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List unanswered invitations",
		RunE: withClient(func(ctx context.Context, c *smclient.Client) error {
			invs, err := c.Invitations(ctx)
			if err != nil {
				return err
			}
			for _, inv := range invs {
				fmt.Printf("%8d  from user %d  %s  %s\n",
					inv.ID, inv.SubjectID, inv.Status, inv.CreatedAt.Format(time.RFC3339))
			}
			return nil
		}),
	})
	invitationsCmd.AddCommand(&cobra.Command{
		Use:   "accept <invitation-id>",
		Short: "Accept an invitation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, c *smclient.Client) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				inv, err := findInvitation(ctx, c, id)
				if err != nil {
					return err
				}
				if err := c.AcceptInvitation(ctx, inv); err != nil {
					return err
				}
				return c.AwaitIdle(ctx, "invitations")
			})(cmd, args)
		},
	})
	invitationsCmd.AddCommand(&cobra.Command{
		Use:   "decline <invitation-id>",
		Short: "Decline an invitation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, c *smclient.Client) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				inv, err := findInvitation(ctx, c, id)
				if err != nil {
					return err
				}
				if err := c.DeclineInvitation(ctx, inv); err != nil {
					return err
				}
				return c.AwaitIdle(ctx, "invitations")
			})(cmd, args)
		},
	})
	rootCmd.AddCommand(invitationsCmd)

	inviteCmd := &cobra.Command{
		Use:   "invite <user-id>",
		Short: "Send a friend request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, c *smclient.Client) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if err := c.InviteFriend(ctx, id); err != nil {
					return err
				}
				return c.AwaitIdle(ctx, "invitations")
			})(cmd, args)
		},
	}
	rootCmd.AddCommand(inviteCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func findInvitation(ctx context.Context, c *smclient.Client, id int64) (entity.Invitation, error) {
	invs, err := c.Invitations(ctx)
	if err != nil {
		return entity.Invitation{}, err
	}
	for _, inv := range invs {
		if inv.ID == id {
			return inv, nil
		}
	}
	return entity.Invitation{}, fmt.Errorf("invitation %d not found", id)
}
