package models

// Article — поля, извлечённые со страницы статьи издателя.
// Любое поле может быть пустым: отсутствие разметки на странице — не ошибка.
type Article struct {
	Tags         []string
	Title        string
	Authors      []string
	Categories   []string
	MainCategory string
}
