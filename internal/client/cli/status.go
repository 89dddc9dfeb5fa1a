package cli

import (
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/iudanet/itemsync/internal/client/app"
)

var statusTmpl = template.Must(template.New("status").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(statusTemplate))

type statusView struct {
	*app.Status
	Expired bool
}

// RunStatus показывает сессию, состояние сети и размер очереди
func (c *Cli) RunStatus(ctx context.Context) error {
	st, err := c.backend.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	view := statusView{Status: st}
	if st.Auth != nil {
		view.Expired = st.Auth.Expired(time.Now())
	}
	if err := statusTmpl.Execute(c.io, view); err != nil {
		return fmt.Errorf("failed to render status: %w", err)
	}

	if st.Pending > 0 {
		c.io.Println()
		c.io.Printf("⚠️  %s waiting to be synchronized. Run 'itemsync sync'.\n", pluralize(st.Pending, "action"))
	}
	return nil
}
