package export

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// ErrPrint: печать документа не удалась.
var ErrPrint = errors.New("print failed")

// Printer превращает HTML-документ в PDF.
type Printer interface {
	Print(ctx context.Context, document string) ([]byte, error)
}

// Размер листа A4 в дюймах и поля в дюймах (≈15 мм).
const (
	a4Width  = 8.27
	a4Height = 11.69
	margin   = 0.6
)

// ChromePrinter печатает через headless Chrome.
type ChromePrinter struct {
	bin    string
	logger *slog.Logger

	mu      sync.Mutex
	browser *rod.Browser
}

// NewChromePrinter создаёт принтер. Браузер запускается при первой печати.
// Путь к Chrome берётся из CHROME_BIN; если пусто, launcher ищет его сам.
func NewChromePrinter(logger *slog.Logger) *ChromePrinter {
	return &ChromePrinter{
		bin:    os.Getenv("CHROME_BIN"),
		logger: logger,
	}
}

// launched возвращает подключённый браузер, запуская его при необходимости.
func (p *ChromePrinter) launched() (*rod.Browser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.browser != nil {
		if _, err := p.browser.Version(); err == nil {
			return p.browser, nil
		}
		p.logger.Warn("stale browser connection, relaunching")
		_ = p.browser.Close()
		p.browser = nil
	}

	l := launcher.New().Headless(true).Leakless(false)
	if p.bin != "" {
		l = l.Bin(p.bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	p.browser = browser
	p.logger.Info("chrome launched", "control_url", controlURL)
	return browser, nil
}

// Print открывает вкладку, загружает документ и печатает A4 с фоном.
func (p *ChromePrinter) Print(ctx context.Context, document string) ([]byte, error) {
	browser, err := p.launched()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPrint, err)
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: open page: %v", ErrPrint, err)
	}
	defer page.Close()

	if err := page.SetDocumentContent(document); err != nil {
		return nil, fmt.Errorf("%w: set content: %v", ErrPrint, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: wait load: %v", ErrPrint, err)
	}

	stream, err := page.PDF(PrintOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: print: %v", ErrPrint, err)
	}
	out, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("%w: read pdf: %v", ErrPrint, err)
	}
	return out, nil
}

// Close закрывает браузер.
func (p *ChromePrinter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.browser == nil {
		return nil
	}
	err := p.browser.Close()
	p.browser = nil
	return err
}

// PrintOptions возвращает параметры печати: A4, фон, CSS @page в приоритете.
func PrintOptions() *proto.PagePrintToPDF {
	w, h, m := a4Width, a4Height, margin
	return &proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
		PaperWidth:        &w,
		PaperHeight:       &h,
		MarginTop:         &m,
		MarginBottom:      &m,
		MarginLeft:        &m,
		MarginRight:       &m,
	}
}

// Document оборачивает содержимое <body> в полный HTML-документ для печати.
func Document(title, body string) string {
	return "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>" +
		html.EscapeString(title) +
		"</title></head><body>" + body + "</body></html>"
}
