// Package document содержит дерево HTML-документа, над которым работает
// движок шаблонов.
//
// Движок зависит только от интерфейсов Tree и Element: поиск элемента по id,
// клонирование поддерева, вставка перед элементом, удаление и перезапись
// текста. Реализация HTML построена на golang.org/x/net/html; любой хост,
// способный смоделировать дерево элементов, может предоставить свою.
package document
