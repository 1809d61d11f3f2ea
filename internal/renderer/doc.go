// Package renderer выполняет асинхронные задания рендеринга.
//
// # Обзор
//
// Renderer: stateless воркер. Он получает задания из очереди
// renders.requested и дополнительно опрашивает БД (polling fallback), чтобы
// подхватить задания, созданные пока брокер был недоступен.
//
// # Обработка задания
//
//  1. Загрузка задания, проверка статуса PENDING
//  2. Claim: атомарный переход PENDING → RUNNING (защита от гонки воркеров)
//  3. Загрузка снимка контракта и версии шаблона (0 = последняя)
//  4. Слияние через engine: keys → lists → functions
//  5. Для формата pdf: печать через export.Printer
//  6. SUCCEEDED или FAILED, метрики, событие render.completed
//
// Ошибки данных (нет контракта, нет шаблона, битый HTML) завершают задание
// статусом FAILED и сообщение подтверждается. Ошибки инфраструктуры
// возвращаются consumer'у: сообщение доставляется повторно.
package renderer
