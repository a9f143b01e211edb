package desktop

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

var (
	ErrEmptyNotification = errors.New("notification title and body are required")
	ErrInvalidText       = errors.New("notification text contains a NUL byte")
)

// The toast script reads its text from the environment so nothing is ever
// spliced into PowerShell source.
const windowsToast = `[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] > $null;` +
	`$t = [Windows.UI.Notifications.ToastNotificationManager]::GetTemplateContent([Windows.UI.Notifications.ToastTemplateType]::ToastText02);` +
	`$x = $t.GetElementsByTagName('text');` +
	`$x.Item(0).AppendChild($t.CreateTextNode($env:FACTLET_TITLE)) > $null;` +
	`$x.Item(1).AppendChild($t.CreateTextNode($env:FACTLET_BODY)) > $null;` +
	`[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier('factlet').Show([Windows.UI.Notifications.ToastNotification]::new($t))`

// Notifier posts desktop notifications through the platform's notifier
// command.
type Notifier struct {
	goos     string
	override []string
	lookPath func(string) (string, error)
}

// New returns a notifier for the running OS. A non-empty override replaces
// the platform command; title and body are appended to it as arguments.
func New(override []string) *Notifier {
	return &Notifier{goos: runtime.GOOS, override: override, lookPath: exec.LookPath}
}

// Argv is the command line used to post title and body.
func (n *Notifier) Argv(title, body string) []string {
	if len(n.override) > 0 {
		return append(append([]string{}, n.override...), title, body)
	}
	switch n.goos {
	case "darwin":
		return []string{"osascript",
			"-e", "on run argv",
			"-e", "display notification (item 2 of argv) with title (item 1 of argv)",
			"-e", "end run",
			title, body}
	case "windows":
		return []string{"powershell", "-NoProfile", "-NonInteractive", "-Command", windowsToast}
	default:
		return []string{"notify-send", "--app-name=factlet", title, body}
	}
}

func validate(title, body string) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(body) == "" {
		return ErrEmptyNotification
	}
	if strings.ContainsRune(title, 0) || strings.ContainsRune(body, 0) {
		return ErrInvalidText
	}
	return nil
}

// Post shows one notification and waits for the notifier to exit.
func (n *Notifier) Post(ctx context.Context, title, body string) error {
	if err := validate(title, body); err != nil {
		return err
	}
	argv := n.Argv(title, body)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), "FACTLET_TITLE="+title, "FACTLET_BODY="+body)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", argv[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Available reports whether the notifier command can be found.
func (n *Notifier) Available() bool {
	argv := n.Argv("", "")
	_, err := n.lookPath(argv[0])
	return err == nil
}

// RequestPermission resolves to whether notifications can be posted. A
// cancelled context resolves to false.
func (n *Notifier) RequestPermission(ctx context.Context) <-chan bool {
	out := make(chan bool, 1)
	go func() {
		defer close(out)
		granted := make(chan bool, 1)
		go func() { granted <- n.Available() }()
		select {
		case <-ctx.Done():
			out <- false
		case ok := <-granted:
			out <- ok
		}
	}()
	return out
}
