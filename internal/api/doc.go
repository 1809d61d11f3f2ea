// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go: Handler с DI (хранилища, publisher, принтер, logger)
//   - routes.go: регистрация маршрутов
//   - middleware.go: logging, recovery, метрики
//   - response.go: унифицированные JSON-ответы и обработка ошибок
//   - dto.go: Data Transfer Objects (request/response)
//   - contract_type_handler.go: /contract-types и версии шаблонов
//   - contract_handler.go: /contracts и синхронный предпросмотр
//   - render_handler.go: /renders
//   - placeholder_handler.go: каталог токенов для авторов шаблонов
package api
