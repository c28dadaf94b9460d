package mcputils

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// ArgumentGetter is satisfied by mcp.CallToolRequest.
type ArgumentGetter interface {
	GetArguments() map[string]interface{}
}

// BindArguments decodes tool arguments into target using its json tags.
// Some MCP clients send every argument as a string, including booleans and
// JSON-encoded lists, so string values are coerced toward the field's kind.
func BindArguments[T any](request ArgumentGetter, target *T) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			coerceString,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		Result:  target,
		TagName: "json",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(request.GetArguments())
}

// coerceString turns JSON-looking strings into the value the target field expects.
// Anything that does not parse is passed through unchanged.
func coerceString(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	raw := strings.TrimSpace(data.(string))
	if raw == "" {
		return data, nil
	}

	switch to.Kind() {
	case reflect.Slice:
		if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
			out := reflect.New(to)
			if err := json.Unmarshal([]byte(raw), out.Interface()); err == nil {
				return out.Elem().Interface(), nil
			}
		}
	case reflect.Map, reflect.Struct:
		if strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}") {
			var out map[string]interface{}
			if err := json.Unmarshal([]byte(raw), &out); err == nil {
				return out, nil
			}
		}
	case reflect.Bool:
		if raw == "true" || raw == "false" {
			return raw == "true", nil
		}
	}
	return data, nil
}
