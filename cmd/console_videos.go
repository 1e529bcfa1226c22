package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"flashflow/internal/bootstrap"
	"flashflow/internal/bootstrap/logging"
	"flashflow/internal/errs"
	"flashflow/internal/usecase/pipeline"
)

var consoleVideosCmd = &cobra.Command{
	Use:   "videos",
	Short: "Inspect and drive videos through the pipeline",
}

var consoleVideosListCmd = &cobra.Command{
	Use:   "list",
	Short: "List videos ordered by priority",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		statuses, _ := cmd.Flags().GetStringSlice("status")
		claimedBy, _ := cmd.Flags().GetString("claimed-by")
		includeTerminal, _ := cmd.Flags().GetBool("all")

		items, err := svc.ListVideos(ctx, pipeline.ListVideosInput{
			Statuses:        statuses,
			ClaimedBy:       claimedBy,
			IncludeTerminal: includeTerminal,
		})
		if err != nil {
			return errs.Wrap(err, "list videos")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "VIDEO\tSTATUS\tSLA\tCLAIMED BY\tNEXT ACTION\tTITLE")
		for _, item := range items {
			claimedBy := item.ClaimedBy
			if claimedBy == "" {
				claimedBy = "-"
			}
			nextAction := item.NextActionType
			if nextAction == "" {
				nextAction = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				item.VideoID, item.RecordingStatus, item.SlaStatus, claimedBy, nextAction, item.Title)
		}
		if err := w.Flush(); err != nil {
			return errs.Wrap(err, "flush video table")
		}
		return nil
	}),
}

var consoleVideosShowCmd = &cobra.Command{
	Use:   "show <video-id>",
	Short: "Show the full state of a video",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		detail, err := svc.GetVideo(ctx, args0(cmd))
		if err != nil {
			return errs.Wrap(err, "get video")
		}

		encoded, err := json.MarshalIndent(detail, "", "  ")
		if err != nil {
			return errs.Wrap(err, "encode video detail")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(encoded))

		events, err := svc.ListEvents(ctx, pipeline.ListEventsInput{VideoID: detail.VideoID, Limit: 10})
		if err != nil {
			return errs.Wrap(err, "list events")
		}
		if len(events) > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "\nrecent events:")
			for _, event := range events {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s  %-14s  %s\n",
					event.CreatedAt.Format(time.RFC3339), event.EventType, event.Actor)
			}
		}
		return nil
	}),
}

var consoleVideosClaimCmd = &cobra.Command{
	Use:   "claim <video-id>",
	Short: "Claim a video for exclusive work",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		actor, _ := cmd.Flags().GetString("actor")

		lease, err := svc.ClaimVideo(ctx, pipeline.ClaimVideoInput{VideoID: args0(cmd), Actor: actor})
		if err != nil {
			return errs.Wrap(err, "claim video")
		}

		expires := "never"
		if lease.ExpiresAt != nil {
			expires = lease.ExpiresAt.Format(time.RFC3339)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "claimed %s by %s, expires %s\n", lease.VideoID, lease.ClaimedBy, expires)
		return nil
	}),
}

var consoleVideosReleaseCmd = &cobra.Command{
	Use:   "release <video-id>",
	Short: "Release a claimed video",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		actor, _ := cmd.Flags().GetString("actor")
		force, _ := cmd.Flags().GetBool("force")

		if err := svc.ReleaseVideo(ctx, pipeline.ReleaseVideoInput{VideoID: args0(cmd), Actor: actor, Force: force}); err != nil {
			return errs.Wrap(err, "release video")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "released %s\n", args0(cmd))
		return nil
	}),
}

var consoleVideosTransitionCmd = &cobra.Command{
	Use:   "transition <video-id> <target-status>",
	Short: "Move a video to a new status",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		actor, _ := cmd.Flags().GetString("actor")
		force, _ := cmd.Flags().GetBool("force")
		finalVideoURL, _ := cmd.Flags().GetString("final-video-url")
		postedURL, _ := cmd.Flags().GetString("posted-url")
		postedPlatform, _ := cmd.Flags().GetString("posted-platform")

		result, err := svc.TransitionVideo(ctx, pipeline.TransitionVideoInput{
			VideoID:        args0(cmd),
			TargetStatus:   strings.ToUpper(cmd.Flags().Args()[1]),
			Actor:          actor,
			Force:          force,
			FinalVideoURL:  finalVideoURL,
			PostedURL:      postedURL,
			PostedPlatform: postedPlatform,
		})
		if err != nil {
			return errs.Wrap(err, "transition video")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", result.VideoID, result.FromStatus, result.ToStatus)
		return nil
	}),
}

// args0 returns the first positional argument after flag parsing.
func args0(cmd *cobra.Command) string {
	return cmd.Flags().Args()[0]
}

func init() {
	consoleCmd.AddCommand(consoleVideosCmd)
	consoleVideosCmd.AddCommand(consoleVideosListCmd)
	consoleVideosCmd.AddCommand(consoleVideosShowCmd)
	consoleVideosCmd.AddCommand(consoleVideosClaimCmd)
	consoleVideosCmd.AddCommand(consoleVideosReleaseCmd)
	consoleVideosCmd.AddCommand(consoleVideosTransitionCmd)

	consoleVideosListCmd.Flags().StringSlice("status", nil, "Filter by status (repeatable)")
	consoleVideosListCmd.Flags().String("claimed-by", "", "Filter by claim holder")
	consoleVideosListCmd.Flags().Bool("all", false, "Include posted videos")

	for _, sub := range []*cobra.Command{consoleVideosClaimCmd, consoleVideosReleaseCmd, consoleVideosTransitionCmd} {
		sub.Flags().String("actor", "", "Acting operator identity")
	}
	consoleVideosReleaseCmd.Flags().Bool("force", false, "Release even when held by someone else")
	consoleVideosTransitionCmd.Flags().Bool("force", false, "Skip required-field checks")
	consoleVideosTransitionCmd.Flags().String("final-video-url", "", "Final video URL (required for EDITED)")
	consoleVideosTransitionCmd.Flags().String("posted-url", "", "Posted URL (required for POSTED)")
	consoleVideosTransitionCmd.Flags().String("posted-platform", "", "Posted platform (required for POSTED)")
}
