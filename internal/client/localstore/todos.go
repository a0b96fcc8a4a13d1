package localstore

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyText    = errors.New("text is required")
	ErrTodoNotFound = errors.New("todo not found")
)

type Todo struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"createdAt"`
}

// Todos returns the to-do list. The first load of a new day purges the
// items finished on an earlier day.
func (s *Store) Todos() ([]Todo, error) {
	todos := []Todo{}
	if _, err := s.get(KeyTodos, &todos); err != nil {
		return nil, err
	}

	var lastReset string
	hasReset, err := s.get(KeyTodosReset, &lastReset)
	if err != nil {
		return nil, err
	}
	today := s.today()
	if hasReset && lastReset == today {
		return todos, nil
	}
	if hasReset {
		todos = slices.DeleteFunc(todos, func(t Todo) bool { return t.Done })
	}
	if err := s.putBatch(map[string]any{KeyTodos: todos, KeyTodosReset: today}); err != nil {
		return nil, err
	}
	return todos, nil
}

func (s *Store) AddTodo(text string) (Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Todo{}, ErrEmptyText
	}
	todos, err := s.Todos()
	if err != nil {
		return Todo{}, err
	}
	t := Todo{ID: uuid.NewString(), Text: text, CreatedAt: s.now().UTC()}
	return t, s.put(KeyTodos, append(todos, t))
}

func (s *Store) ToggleTodo(id string) (Todo, error) {
	todos, err := s.Todos()
	if err != nil {
		return Todo{}, err
	}
	i := slices.IndexFunc(todos, func(t Todo) bool { return t.ID == id })
	if i < 0 {
		return Todo{}, ErrTodoNotFound
	}
	todos[i].Done = !todos[i].Done
	return todos[i], s.put(KeyTodos, todos)
}

func (s *Store) RemoveTodo(id string) error {
	todos, err := s.Todos()
	if err != nil {
		return err
	}
	return s.put(KeyTodos, slices.DeleteFunc(todos, func(t Todo) bool { return t.ID == id }))
}

// ClearDone drops every finished item now.
func (s *Store) ClearDone() ([]Todo, error) {
	todos, err := s.Todos()
	if err != nil {
		return nil, err
	}
	todos = slices.DeleteFunc(todos, func(t Todo) bool { return t.Done })
	return todos, s.put(KeyTodos, todos)
}
