package main

import (
	"fmt"
	"slices"

	"github.com/fluxury/fluxury"
	"github.com/fluxury/fluxury/store"
)

type todo struct {
	ID    int
	Desc  string
	Done  bool
	Trash bool
}

func newCounterStore(d *fluxury.Dispatcher) (*store.Store[int], error) {
	return store.New(d, "CountStore", store.SpecTable(0, map[string]store.Handler[int]{
		"increment": func(n int, _ any, _ store.WaitFunc) (int, error) { return n + 1, nil },
		"decrement": func(n int, _ any, _ store.WaitFunc) (int, error) { return n - 1, nil },
		"set": func(_ int, data any, _ store.WaitFunc) (int, error) {
			return toInt(data)
		},
	}))
}

func newTodosStore(d *fluxury.Dispatcher) (*store.Store[[]todo], error) {
	return store.New(d, "TodosStore", store.SpecTable([]todo{}, map[string]store.Handler[[]todo]{
		"setTodo": func(ts []todo, data any, _ store.WaitFunc) ([]todo, error) {
			t, err := toTodo(data)
			if err != nil {
				return ts, err
			}
			next := slices.Clone(ts)
			for len(next) <= t.ID {
				next = append(next, todo{ID: len(next)})
			}
			next[t.ID] = t
			return next, nil
		},
		"markDone": func(ts []todo, data any, _ store.WaitFunc) ([]todo, error) {
			return updateTodo(ts, data, func(t todo) todo { t.Done = true; return t })
		},
		"trashTodo": func(ts []todo, data any, _ store.WaitFunc) ([]todo, error) {
			return updateTodo(ts, data, func(t todo) todo { t.Trash = true; return t })
		},
	}))
}

func updateTodo(ts []todo, data any, fn func(todo) todo) ([]todo, error) {
	id, err := toInt(data)
	if err != nil {
		return ts, err
	}
	if !slices.ContainsFunc(ts, func(t todo) bool { return t.ID == id }) {
		return ts, nil
	}
	next := slices.Clone(ts)
	for i, t := range next {
		if t.ID == id {
			next[i] = fn(t)
		}
	}
	return next, nil
}

// toInt accepts the integer shapes produced by Go callers and by TOML.
func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("want an integer, got %T", v)
	}
}

func toTodo(v any) (todo, error) {
	switch t := v.(type) {
	case todo:
		return t, nil
	case map[string]any:
		id, err := toInt(t["id"])
		if err != nil {
			return todo{}, fmt.Errorf("todo id: %w", err)
		}
		if id < 0 {
			return todo{}, fmt.Errorf("todo id must not be negative, got %d", id)
		}
		desc, _ := t["desc"].(string)
		done, _ := t["done"].(bool)
		return todo{ID: id, Desc: desc, Done: done}, nil
	default:
		return todo{}, fmt.Errorf("want a todo table, got %T", v)
	}
}
