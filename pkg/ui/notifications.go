package ui

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"igprofile/pkg/config"
)

// NotificationSender delivers a desktop notification.
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender sends notifications on Linux using notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	return exec.Command("notify-send", title, message).Run()
}

// MacOSNotificationSender sends notifications on macOS using osascript
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`display notification %q with title %q`, message, title)
	return exec.Command("osascript", "-e", script).Run()
}

// WindowsNotificationSender sends notifications on Windows using PowerShell
type WindowsNotificationSender struct{}

func (w *WindowsNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`
		[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
		$template = [Windows.UI.Notifications.ToastNotificationManager]::GetTemplateContent([Windows.UI.Notifications.ToastTemplateType]::ToastText02)
		$text = $template.GetElementsByTagName("text")
		$text.Item(0).AppendChild($template.CreateTextNode(%q)) | Out-Null
		$text.Item(1).AppendChild($template.CreateTextNode(%q)) | Out-Null
		$toast = [Windows.UI.Notifications.ToastNotification]::new($template)
		[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("igprofile").Show($toast)
	`, title, message)
	return exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script).Run()
}

func platformSender() NotificationSender {
	switch runtime.GOOS {
	case "linux":
		return &LinuxNotificationSender{}
	case "darwin":
		return &MacOSNotificationSender{}
	case "windows":
		return &WindowsNotificationSender{}
	default:
		return nil
	}
}

// Notifier announces run completion and failures on the terminal and,
// when configured, on the desktop.
type Notifier struct {
	cfg    config.NotificationConfig
	sender NotificationSender
}

// NewNotifier picks the platform sender when NotificationType is
// "desktop" or "both".
func NewNotifier(cfg config.NotificationConfig) *Notifier {
	n := &Notifier{cfg: cfg}
	switch strings.ToLower(cfg.NotificationType) {
	case "desktop", "both":
		n.sender = platformSender()
	}
	return n
}

// NewNotifierWithSender uses sender for desktop delivery.
func NewNotifierWithSender(cfg config.NotificationConfig, sender NotificationSender) *Notifier {
	return &Notifier{cfg: cfg, sender: sender}
}

func (n *Notifier) terminal() bool {
	t := strings.ToLower(n.cfg.NotificationType)
	return t == "" || t == "terminal" || t == "both"
}

func (n *Notifier) deliver(title, message string, paint func(string) string) {
	if !n.cfg.Enabled {
		return
	}
	if n.terminal() {
		fmt.Fprintf(Out, "\n%s: %s\n", paint(title), paint(message))
	}
	if n.sender != nil {
		// Desktop delivery is best effort.
		_ = n.sender.Send(title, message)
	}
}

// Complete announces a finished scrape.
func (n *Notifier) Complete(title, message string) {
	if n.cfg.OnComplete {
		n.deliver(title, message, Green)
	}
}

// Failed announces a failed scrape.
func (n *Notifier) Failed(title, message string) {
	if n.cfg.OnError {
		n.deliver(title, message, Red)
	}
}
