package hook

import (
	"fmt"
	"sync"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// TengoExecutor handles the execution of Tengo scripts.
// It is safe for concurrent use by several download pipelines.
type TengoExecutor struct {
	scripts map[Type]string
	mutex   sync.RWMutex
}

// NewTengoExecutor creates a new Tengo script executor.
func NewTengoExecutor() *TengoExecutor {
	return &TengoExecutor{
		scripts: make(map[Type]string),
	}
}

// Execute runs the specified hook type with the given context.
// A missing script is a no-op that keeps the current file name.
func (e *TengoExecutor) Execute(hookType Type, ctx Context) (Result, error) {
	result := Result{FileName: ctx.FileName}

	e.mutex.RLock()
	script, exists := e.scripts[hookType]
	e.mutex.RUnlock()
	if !exists {
		return result, nil
	}

	scriptInstance := tengo.NewScript([]byte(script))
	scriptInstance.SetImports(stdlib.GetModuleMap("fmt", "os", "text", "times"))

	_ = scriptInstance.Add("documentId", ctx.DocumentID)
	_ = scriptInstance.Add("title", ctx.Title)
	_ = scriptInstance.Add("fileName", ctx.FileName)
	_ = scriptInstance.Add("url", ctx.URL)
	_ = scriptInstance.Add("mirror", ctx.Mirror)
	_ = scriptInstance.Add("path", ctx.Path)
	_ = scriptInstance.Add("skip", false)
	_ = scriptInstance.Add("err", "")

	for k, v := range ctx.Vars {
		if err := scriptInstance.Add(k, v); err != nil {
			return result, fmt.Errorf("%w: %s: variable %s: %v", ErrHookExecution, hookType, k, err)
		}
	}

	compiled, err := scriptInstance.Run()
	if err != nil {
		return result, fmt.Errorf("%w: %s: %v", ErrHookExecution, hookType, err)
	}

	switch v := compiled.Get("err").Value().(type) {
	case error:
		return result, fmt.Errorf("%w: %s: %v", ErrHookScript, hookType, v)
	case string:
		if v != "" {
			return result, fmt.Errorf("%w: %s: %s", ErrHookScript, hookType, v)
		}
	}

	if name := compiled.Get("fileName").String(); name != "" {
		result.FileName = name
	}
	result.Skip = compiled.Get("skip").Bool()
	return result, nil
}

// AddScript adds or updates a script for the specified hook type.
func (e *TengoExecutor) AddScript(hookType Type, script string) error {
	if hookType == "" {
		return ErrHookTypeEmpty
	}
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.scripts[hookType] = script
	return nil
}

// RemoveScript removes the script for the specified hook type.
func (e *TengoExecutor) RemoveScript(hookType Type) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	delete(e.scripts, hookType)
}

// HasScript checks if a script exists for the specified hook type.
func (e *TengoExecutor) HasScript(hookType Type) bool {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	_, exists := e.scripts[hookType]
	return exists
}
