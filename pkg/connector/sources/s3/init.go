package s3

import (
	"github.com/openfdw/openfdw/pkg/connector/registry"
)

func init() {
	registry.MustRegister(registry.Definition{
		Metadata:  Metadata(),
		Factory:   New,
		Validator: Validator,
	})
}
