package console

import (
	"context"
	"fmt"
	"io"

	"github.com/Sapuran-Berperan/backoffice-tables/internal/notify"
	"github.com/fatih/color"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	successColor = color.New(color.FgGreen)
	infoColor    = color.New(color.FgCyan)
)

// PrintNotifications writes notifications from ch to w until ctx is done or ch closes
func PrintNotifications(ctx context.Context, w io.Writer, ch <-chan notify.Notification) {
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			_, _ = fmt.Fprintln(w, FormatNotification(n))
		}
	}
}

// FormatNotification renders a notification as one colored line
func FormatNotification(n notify.Notification) string {
	c := infoColor
	switch n.Level {
	case notify.LevelError:
		c = errorColor
	case notify.LevelSuccess:
		c = successColor
	}
	return c.Sprintf("[%s] %s", n.Title, n.Message)
}
