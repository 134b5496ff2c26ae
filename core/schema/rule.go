package schema

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

var (
	ruleEnvOnce sync.Once
	ruleEnv     *cel.Env
	ruleEnvErr  error

	rulePrograms sync.Map // expression -> cel.Program
)

func celEnv() (*cel.Env, error) {
	ruleEnvOnce.Do(func() {
		ruleEnv, ruleEnvErr = cel.NewEnv(cel.Variable("self", cel.DynType))
	})
	return ruleEnv, ruleEnvErr
}

// CompileRule checks that expr is a valid rule expression.
func CompileRule(expr string) error {
	_, err := ruleProgram(expr)
	return err
}

func ruleProgram(expr string) (cel.Program, error) {
	if prg, ok := rulePrograms.Load(expr); ok {
		return prg.(cel.Program), nil
	}
	env, err := celEnv()
	if err != nil {
		return nil, fmt.Errorf("create rule environment: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, err
	}
	rulePrograms.Store(expr, prg)
	return prg, nil
}

// evalRule evaluates expr with the normalized value bound to "self".
func evalRule(expr string, value any) (bool, error) {
	prg, err := ruleProgram(expr)
	if err != nil {
		return false, err
	}
	out, _, err := prg.Eval(map[string]any{"self": value})
	if err != nil {
		return false, err
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule returned %s, not bool", out.Type().TypeName())
	}
	return result, nil
}
