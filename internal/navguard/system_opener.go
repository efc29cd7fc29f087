package navguard

import (
	"context"
	"fmt"

	"github.com/pkg/browser"
)

// SystemOpener opens URLs with the operating system's default handler.
type SystemOpener struct{}

func (SystemOpener) Open(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := browser.OpenURL(url); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}
