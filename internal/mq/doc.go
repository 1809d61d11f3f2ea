// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go: соединение с reconnect и graceful shutdown
//   - topology.go: объявление exchanges, queues, bindings
//   - publisher.go: публикация событий рендеринга
//   - consumer.go: потребление сообщений с ack/nack
//
// Типы сообщений:
//   - render.requested: создано задание рендеринга
//   - render.completed: задание завершилось (SUCCEEDED или FAILED)
//
// Exchanges:
//   - contracta.renders: события заданий рендеринга
//   - contracta.dlq: dead letter queue
package mq
