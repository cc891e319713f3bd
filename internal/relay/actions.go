package relay

import (
	"errors"
	"fmt"
	"math"
)

// Payload shape checks per action. Unknown keys are ignored; the upstream
// is the authority on anything beyond shape.
var actionValidators = map[string]func(payload map[string]any) error{
	"getList":      validateEmpty,
	"getUpdates":   validateEmpty,
	"getDetail":    validateRowOnly,
	"noChange":     validateRowOnly,
	"complete":     validateCompletion,
	"saveDraft":    validateAnswer,
	"addQuestions": validateAddQuestions,
	"setPublished": validateSetPublished,
}

var errMissingRow = errors.New("payload requires a non-negative integer row")

func knownAction(action string) bool {
	_, ok := actionValidators[action]
	return ok
}

func validatePayload(action string, payload map[string]any) error {
	validate, ok := actionValidators[action]
	if !ok {
		return fmt.Errorf("unknown action %q", action)
	}
	return validate(payload)
}

func validateEmpty(map[string]any) error {
	return nil
}

func validateRowOnly(payload map[string]any) error {
	return requireRow(payload)
}

// validateCompletion covers both callers of "complete": the UI sends the
// answer text along, the outbox drainer re-confirms with the row alone.
func validateCompletion(payload map[string]any) error {
	if err := requireRow(payload); err != nil {
		return err
	}
	if err := optionalString(payload, "answer"); err != nil {
		return err
	}
	return optionalString(payload, "url")
}

func validateAnswer(payload map[string]any) error {
	if err := requireRow(payload); err != nil {
		return err
	}
	if err := requireString(payload, "answer"); err != nil {
		return err
	}
	return optionalString(payload, "url")
}

func validateAddQuestions(payload map[string]any) error {
	raw, ok := payload["questions"]
	if !ok {
		return errors.New("payload requires a questions array")
	}
	list, ok := raw.([]any)
	if !ok || len(list) == 0 {
		return errors.New("questions must be a non-empty array of strings")
	}
	for _, entry := range list {
		if _, ok := entry.(string); !ok {
			return errors.New("questions must be a non-empty array of strings")
		}
	}
	return nil
}

func validateSetPublished(payload map[string]any) error {
	if err := requireRow(payload); err != nil {
		return err
	}
	if _, ok := payload["published"].(bool); !ok {
		return errors.New("payload requires a boolean published flag")
	}
	return nil
}

// requireRow accepts only JSON numbers holding non-negative integers.
func requireRow(payload map[string]any) error {
	raw, ok := payload["row"]
	if !ok {
		return errMissingRow
	}
	num, ok := raw.(float64)
	if !ok || num != math.Trunc(num) || num < 0 {
		return errMissingRow
	}
	return nil
}

func requireString(payload map[string]any, key string) error {
	if _, ok := payload[key].(string); !ok {
		return fmt.Errorf("payload requires a string %s", key)
	}
	return nil
}

func optionalString(payload map[string]any, key string) error {
	raw, ok := payload[key]
	if !ok {
		return nil
	}
	if _, ok := raw.(string); !ok {
		return fmt.Errorf("%s must be a string when present", key)
	}
	return nil
}
