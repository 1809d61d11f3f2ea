// Package cli реализует инструмент командной строки Contracta.
//
// # Обзор
//
// CLI работает с Contracta API по HTTP и не импортирует internal/api.
// Исключение составляют локальные команды (render local, placeholders):
// они вызывают движок шаблонов напрямую и работают без сервера.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Contracta API. Инкапсулирует запросы, парсинг
// ответов (DataResponse, ListResponse, ErrorResponse) и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8080")
//	types, err := client.ListContractTypes()
//
// ## Output
//
// Форматирование вывода: таблицы (text/tabwriter) по умолчанию
// или JSON с флагом --json. Документы и данные идут в stdout,
// сообщения в stderr, поэтому работает pipe:
//
//	contracta render output ID > contrato.pdf
//
// ## Commands
//
//   - type: list, create, show, delete, templates, upload, import
//   - contract: list, show, create, delete
//   - render: start, show, output, list, local
//   - preview, placeholders
//
// Группы создаются фабриками (NewTypeCmd и т.д.), принимающими clientFn
// и outputFn для ленивого создания Client и Output после парсинга флагов.
//
// ## Catalog
//
// type import читает YAML-каталог типов контрактов (catalog.go) и
// загружает шаблоны. Повторный импорт не создаёт дубликатов типов,
// но добавляет новую версию шаблона.
package cli
