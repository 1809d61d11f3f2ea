package renderer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/Contracta/internal/domain"
	"github.com/shaiso/Contracta/internal/engine"
	"github.com/shaiso/Contracta/internal/export"
)

// Result: результат одного рендера.
type Result struct {
	Output []byte
	Stats  engine.Stats
}

// Render выполняет слияние шаблона с контрактом и при необходимости печатает PDF.
// Используется и воркером, и синхронным предпросмотром API.
func Render(ctx context.Context, c *domain.Contract, tmpl string, format domain.OutputFormat, opts RenderOptions) (*Result, error) {
	engineOpts := []engine.Option{engine.WithLogger(opts.logger())}
	if opts.Funcs != nil {
		engineOpts = append(engineOpts, engine.WithFuncs(opts.Funcs))
	}
	if opts.Now != nil {
		engineOpts = append(engineOpts, engine.WithClock(opts.Now))
	}

	body, stats, err := engine.RenderHTML(c, tmpl, engineOpts...)
	if err != nil {
		return nil, err
	}

	if format != domain.OutputFormatPDF {
		return &Result{Output: []byte(body), Stats: stats}, nil
	}

	if opts.Printer == nil {
		return nil, ErrNoPrinter
	}
	pdf, err := opts.Printer.Print(ctx, export.Document("Contrato "+c.Number, body))
	if err != nil {
		return nil, fmt.Errorf("print contract %s: %w", c.Number, err)
	}
	return &Result{Output: pdf, Stats: stats}, nil
}

// RenderOptions: зависимости одного рендера.
type RenderOptions struct {
	Funcs   *engine.Funcs
	Printer export.Printer
	Logger  *slog.Logger
	Now     func() time.Time
}

func (o RenderOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
