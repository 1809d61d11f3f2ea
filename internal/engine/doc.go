// Package engine содержит движок слияния шаблонов контрактов.
//
// Включает:
//   - lexer.go: однопроходный токенизатор микроязыка шаблонов
//   - callparser.go: рекурсивный разбор вызовов функций
//   - prorate.go: распределение месячной цены по фискальной композиции
//   - keys.go: реестр скалярных ключей [[ key ]]
//   - funcs.go: реестр функций {{ name(args) }}
//   - lists.go: реестр списков << $list(id) >> и строк << list(field) >>
//   - engine.go: оркестрация проходов keys, lists, functions
//
// Движок работает по принципу best effort: неизвестные ключи, функции и
// отсутствующие якоря не вызывают ошибок, а остаются в документе
// видимыми токенами. Это сигнал автору шаблона о недостающих данных.
//
// Микроязык:
//
//	[[ cliente_nome ]]                     скаляр
//	{{ soma(1, multiplica(2, 3)) }}        вызов функции, вложенные вызовы без скобок {{ }}
//	<< $produtos(linha-produto, Produtos) >> якорь списка
//	<< produtos(nome) >>                   поле строки внутри якорного элемента
package engine
