package cmd

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/Iron-Ham/cfoundation/internal/config"
	"github.com/Iron-Ham/cfoundation/internal/notify"
	"github.com/Iron-Ham/cfoundation/internal/subscription"
	"github.com/spf13/cobra"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Post and watch notifications",
	Long: `Notify posts notifications to, and watches notifications from, the
configured notification center. With the file backend two processes that
share notify.dir see each other's notifications.`,
}

var notifyPostCmd = &cobra.Command{
	Use:   "post <name> [key=value...]",
	Short: "Post a notification",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runNotifyPost,
}

var notifyWatchCmd = &cobra.Command{
	Use:   "watch [name]",
	Short: "Print notifications as they are posted",
	Long: `Watch prints notifications posted after it starts. Without a name it
prints every notification. Names without the cfoundation. prefix get it
added, so "timers.released" watches timer releases.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNotifyWatch,
}

var (
	watchCount   int
	watchTimeout time.Duration
)

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyPostCmd)
	notifyCmd.AddCommand(notifyWatchCmd)

	notifyWatchCmd.Flags().IntVarP(&watchCount, "count", "n", 0, "exit after this many notifications (0 = until interrupted)")
	notifyWatchCmd.Flags().DurationVar(&watchTimeout, "timeout", 0, "exit after this long (0 = no timeout)")
}

// parseUserInfo turns key=value arguments into a notification payload.
func parseUserInfo(args []string) (map[string]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	info := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid user info %q: expected key=value", arg)
		}
		info[key] = value
	}
	return info, nil
}

func runNotifyPost(cmd *cobra.Command, args []string) error {
	info, err := parseUserInfo(args[1:])
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	center, err := newCenter(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = center.Close() }()

	name := notify.NewName(args[0])
	if err := center.Post(notify.Notification{Name: name, UserInfo: info}); err != nil {
		return fmt.Errorf("failed to post %s: %w", name, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", render(out, okStyle, "posted"), name)
	return nil
}

func runNotifyWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	center, err := newCenter(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = center.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if watchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, watchTimeout)
		defer cancel()
	}

	var name notify.Name
	if len(args) == 1 {
		name = notify.NewName(args[0])
	}

	out := cmd.OutOrStdout()
	if cfg.Notify.Backend == "file" {
		fmt.Fprintf(out, "%s %s\n", render(out, titleStyle, "watching"), cfg.Notify.Dir)
	}
	_, err = watchNotifications(ctx, center, name, watchCount, out)
	return err
}

// watchNotifications prints notifications from center until count have
// arrived or ctx is done. An empty name watches every notification. It
// returns how many notifications were printed; running out of time is not an
// error.
func watchNotifications(ctx context.Context, center notify.Center, name notify.Name, count int, out io.Writer) (int, error) {
	received := make(chan notify.Notification, 16)
	handler := func(n notify.Notification) {
		select {
		case received <- n:
		case <-ctx.Done():
		}
	}

	var (
		h   *subscription.Handle
		err error
	)
	if name == "" {
		h, err = center.ObserveAll(handler)
	} else {
		h, err = center.Observe(name, handler)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to observe notifications: %w", err)
	}
	defer h.Cancel()

	printed := 0
	for count <= 0 || printed < count {
		select {
		case n := <-received:
			fmt.Fprintln(out, formatNotification(out, n))
			printed++
		case <-ctx.Done():
			return printed, nil
		}
	}
	return printed, nil
}

func formatNotification(out io.Writer, n notify.Notification) string {
	var b strings.Builder
	b.WriteString(render(out, mutedStyle, n.PostedAt.Format(time.TimeOnly)))
	b.WriteByte(' ')
	b.WriteString(render(out, titleStyle, n.Name.String()))
	fmt.Fprintf(&b, " pid=%d", n.Sender)
	for _, key := range slices.Sorted(maps.Keys(n.UserInfo)) {
		fmt.Fprintf(&b, " %s=%s", key, render(out, warnStyle, n.UserInfo[key]))
	}
	return b.String()
}
