package document

// Tree: дерево документа с адресацией элементов по id.
type Tree interface {
	// Root возвращает корень области рендеринга (для HTML это <body>).
	Root() Element

	// ElementByID возвращает первый элемент с атрибутом id.
	ElementByID(id string) (Element, bool)
}

// Element: узел дерева, над которым движок выполняет операции.
type Element interface {
	// ID возвращает значение атрибута id ("" если его нет).
	ID() string

	// Clone возвращает отсоединённую глубокую копию без атрибута id у корня копии.
	Clone() Element

	// InsertBefore вставляет отсоединённый элемент перед текущим в его родителе.
	// Возвращает false, если у текущего элемента нет родителя.
	InsertBefore(e Element) bool

	// Remove отсоединяет элемент от родителя.
	Remove()

	// Text возвращает конкатенацию текстовых узлов поддерева.
	Text() string

	// Rewrite применяет fn к каждому текстовому фрагменту поддерева:
	// текстовым узлам и значениям атрибутов. Возвращает число изменённых фрагментов.
	Rewrite(fn func(string) string) int
}
