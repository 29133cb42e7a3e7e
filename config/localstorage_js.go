//go:build js

package config

import (
	"fmt"

	"github.com/gopherjs/gopherjs/js"
)

// LocalStorage persists records in the browser's window.localStorage
type LocalStorage struct{}

// NewLocalStorage returns the page localStorage backend
func NewLocalStorage() LocalStorage {
	return LocalStorage{}
}

func (LocalStorage) Load(key string) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("localStorage read %s: %v", key, r)
		}
	}()
	ls := js.Global.Get("localStorage")
	if ls == nil || ls == js.Undefined {
		return nil, ErrNotFound
	}
	item := ls.Call("getItem", key)
	if item == nil || item == js.Undefined {
		return nil, ErrNotFound
	}
	return []byte(item.String()), nil
}

// Save fails when storage is full or disabled (private browsing)
func (LocalStorage) Save(key string, data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("localStorage write %s: %v", key, r)
		}
	}()
	ls := js.Global.Get("localStorage")
	if ls == nil || ls == js.Undefined {
		return fmt.Errorf("localStorage unavailable")
	}
	ls.Call("setItem", key, string(data))
	return nil
}
