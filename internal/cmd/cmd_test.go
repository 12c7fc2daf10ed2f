package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Iron-Ham/cfoundation/internal/config"
	"github.com/Iron-Ham/cfoundation/internal/notify"
	"github.com/Iron-Ham/cfoundation/internal/timers"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

// setupTestConfig isolates viper and the config directory for one test.
func setupTestConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	viper.Reset()
	bindFlags()
	t.Cleanup(viper.Reset)
	return dir
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Notify.Backend = "local"
	cfg.Logging.Level = "error"
	cfg.Timer.IntervalMs = 10
	cfg.Timer.Ticks = 3
	return cfg
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "cfoundation" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "cfoundation")
	}

	cmdMap := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}
	for _, name := range []string{"timer", "notify", "config"} {
		if !cmdMap[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestParseUserInfo(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    map[string]string
		wantErr bool
	}{
		{name: "none", args: nil, want: nil},
		{name: "pairs", args: []string{"a=1", "b=two"}, want: map[string]string{"a": "1", "b": "two"}},
		{name: "empty value", args: []string{"a="}, want: map[string]string{"a": ""}},
		{name: "value with equals", args: []string{"q=x=y"}, want: map[string]string{"q": "x=y"}},
		{name: "missing equals", args: []string{"a"}, wantErr: true},
		{name: "empty key", args: []string{"=v"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseUserInfo(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseUserInfo() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseUserInfo() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("parseUserInfo()[%q] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestRunTimerWithConfig(t *testing.T) {
	for _, executor := range config.ValidExecutors() {
		t.Run(executor, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Timer.Executor = executor

			var out bytes.Buffer
			if err := runTimerWithConfig(context.Background(), cfg, "", &out); err != nil {
				t.Fatalf("runTimerWithConfig() error = %v", err)
			}

			got := out.String()
			for _, want := range []string{"tick 1/3", "tick 2/3", "tick 3/3", "after 3 ticks"} {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q:\n%s", want, got)
				}
			}
			if strings.Contains(got, "tick 4/3") {
				t.Errorf("timer ticked after cancel:\n%s", got)
			}
		})
	}
}

func TestRunTimerWithConfig_OneShot(t *testing.T) {
	cfg := testConfig(t)
	cfg.Timer.IntervalMs = 0

	var out bytes.Buffer
	if err := runTimerWithConfig(context.Background(), cfg, "", &out); err != nil {
		t.Fatalf("runTimerWithConfig() error = %v", err)
	}
	if !strings.Contains(out.String(), "after 1 ticks") {
		t.Errorf("one-shot timer output:\n%s", out.String())
	}
}

func TestRunTimerWithConfig_Interrupted(t *testing.T) {
	cfg := testConfig(t)
	cfg.Timer.IntervalMs = 10_000

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	var out bytes.Buffer
	go func() { done <- runTimerWithConfig(ctx, cfg, "", &out) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runTimerWithConfig() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("interrupted timer was not released")
	}
	if !strings.Contains(out.String(), "after 0 ticks") {
		t.Errorf("interrupted output:\n%s", out.String())
	}
}

func TestRunTimerWithConfig_PostsRelease(t *testing.T) {
	cfg := testConfig(t)
	cfg.Notify.Backend = "file"
	cfg.Notify.Dir = t.TempDir()
	cfg.Notify.PollIntervalMs = 20

	watcher, err := notify.NewFileCenter(cfg.Notify.Dir, notify.WithPollInterval(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewFileCenter() error = %v", err)
	}
	defer watcher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type result struct {
		n   int
		out string
	}
	watched := make(chan result, 1)
	go func() {
		var buf bytes.Buffer
		n, _ := watchNotifications(ctx, watcher, timers.NameTimerReleased, 1, &buf)
		watched <- result{n, buf.String()}
	}()

	var out bytes.Buffer
	if err := runTimerWithConfig(ctx, cfg, "", &out); err != nil {
		t.Fatalf("runTimerWithConfig() error = %v", err)
	}

	r := <-watched
	if r.n != 1 {
		t.Fatalf("watchNotifications() saw %d notifications, want 1", r.n)
	}
	if !strings.Contains(r.out, string(timers.NameTimerReleased)) || !strings.Contains(r.out, timers.IDKey+"=") {
		t.Errorf("release notification output = %q", r.out)
	}
}

func TestWatchNotifications_Filter(t *testing.T) {
	center := notify.NewLocalCenter()
	defer center.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type result struct {
		n   int
		out string
	}
	watched := make(chan result, 1)
	ready := make(chan struct{})
	go func() {
		var buf bytes.Buffer
		close(ready)
		n, _ := watchNotifications(ctx, center, notify.NewName("wanted"), 2, &buf)
		watched <- result{n, buf.String()}
	}()
	<-ready

	// LocalCenter delivers synchronously, so keep posting until the
	// watcher has subscribed and seen both.
	deadline := time.After(3 * time.Second)
	for i := 0; ; i++ {
		_ = center.Post(notify.Notification{Name: notify.NewName("other")})
		_ = center.Post(notify.Notification{Name: notify.NewName("wanted"), UserInfo: map[string]string{"seq": "x"}})
		select {
		case r := <-watched:
			if r.n != 2 {
				t.Fatalf("watchNotifications() = %d, want 2", r.n)
			}
			if strings.Contains(r.out, "cfoundation.other") {
				t.Errorf("filtered watch printed other notification:\n%s", r.out)
			}
			if !strings.Contains(r.out, "seq=x") {
				t.Errorf("watch output missing user info:\n%s", r.out)
			}
			return
		case <-deadline:
			t.Fatal("watcher never received notifications")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWatchNotifications_ContextDone(t *testing.T) {
	center := notify.NewLocalCenter()
	defer center.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	n, err := watchNotifications(ctx, center, "", 0, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("watchNotifications() error = %v", err)
	}
	if n != 0 {
		t.Errorf("watchNotifications() = %d, want 0", n)
	}
}

func TestWatchNotifications_ClosedCenter(t *testing.T) {
	center := notify.NewLocalCenter()
	_ = center.Close()

	if _, err := watchNotifications(context.Background(), center, "", 1, &bytes.Buffer{}); err == nil {
		t.Error("watchNotifications() on closed center should fail")
	}
}

func TestConfigCommands(t *testing.T) {
	dir := setupTestConfig(t)
	configFile := filepath.Join(dir, "cfoundation", "config.yaml")

	out, err := executeCommand(rootCmd, "config", "path")
	if err != nil {
		t.Fatalf("config path error = %v", err)
	}
	if strings.TrimSpace(out) != configFile {
		t.Errorf("config path = %q, want %q", strings.TrimSpace(out), configFile)
	}

	if _, err := executeCommand(rootCmd, "config", "init"); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	data, err := os.ReadFile(configFile)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	var written config.Config
	if err := yaml.Unmarshal(data, &written); err != nil {
		t.Fatalf("config file is not valid YAML: %v", err)
	}
	if written.Timer.IntervalMs != config.Default().Timer.IntervalMs {
		t.Errorf("written timer.interval_ms = %d, want default", written.Timer.IntervalMs)
	}

	if _, err := executeCommand(rootCmd, "config", "init"); err == nil {
		t.Error("second config init should fail")
	}

	if _, err := executeCommand(rootCmd, "config", "set", "timer.ticks", "9"); err != nil {
		t.Fatalf("config set error = %v", err)
	}

	out, err = executeCommand(rootCmd, "config", "show")
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	var shown config.Config
	if err := yaml.Unmarshal([]byte(out), &shown); err != nil {
		t.Fatalf("config show output is not YAML: %v\n%s", err, out)
	}
	if shown.Timer.Ticks != 9 {
		t.Errorf("shown timer.ticks = %d, want 9", shown.Timer.Ticks)
	}
}

func TestConfigSet_Rejects(t *testing.T) {
	setupTestConfig(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown key", args: []string{"config", "set", "timer.bogus", "1"}},
		{name: "not an integer", args: []string{"config", "set", "timer.ticks", "many"}},
		{name: "invalid value", args: []string{"config", "set", "timer.executor", "threads"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := executeCommand(rootCmd, tt.args...); err == nil {
				t.Errorf("%v should fail", tt.args)
			}
		})
	}
}

func TestNotifyPostCommand(t *testing.T) {
	setupTestConfig(t)
	dir := t.TempDir()

	out, err := executeCommand(rootCmd, "--notify-dir", dir, "notify", "post", "greeting", "who=world")
	if err != nil {
		t.Fatalf("notify post error = %v", err)
	}
	if !strings.Contains(out, "posted cfoundation.greeting") {
		t.Errorf("notify post output = %q", out)
	}

	data, err := os.ReadFile(filepath.Join(dir, notify.LogFileName))
	if err != nil {
		t.Fatalf("notification log not written: %v", err)
	}
	if !strings.Contains(string(data), `"who":"world"`) {
		t.Errorf("notification log = %s", data)
	}

	if _, err := executeCommand(rootCmd, "notify", "post", "greeting", "novalue"); err == nil {
		t.Error("notify post with malformed user info should fail")
	}
}

func TestTimerRunCommand(t *testing.T) {
	setupTestConfig(t)

	out, err := executeCommand(rootCmd,
		"--notify-backend", "local",
		"timer", "run", "--interval", "10ms", "--ticks", "2", "--executor", "queue")
	if err != nil {
		t.Fatalf("timer run error = %v", err)
	}
	if !strings.Contains(out, "tick 2/2") || !strings.Contains(out, "after 2 ticks") {
		t.Errorf("timer run output:\n%s", out)
	}

	if _, err := executeCommand(rootCmd, "timer", "run", "--executor", "threads"); err == nil {
		t.Error("timer run with an unknown executor should fail")
	}
}
