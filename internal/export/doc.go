// Package export печатает отрендеренные контракты в PDF.
//
// ChromePrinter запускает headless Chrome через go-rod один раз и
// переиспользует браузер; каждая печать открывает отдельную вкладку.
package export
