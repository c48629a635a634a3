package webserver

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
)

// JSONSerializer plugs jsoniter into echo.
type JSONSerializer struct {
	json jsoniter.API
}

func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{json: jsoniter.ConfigCompatibleWithStandardLibrary}
}

func (s *JSONSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := s.json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (s *JSONSerializer) Deserialize(c echo.Context, i interface{}) error {
	return s.json.NewDecoder(c.Request().Body).Decode(i)
}
