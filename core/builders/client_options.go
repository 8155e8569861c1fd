package builders

import "strings"

type clientConfig struct {
	typeProcessors map[string]func(any) any
	quoteIdent     func(string) string
}

type ClientOption func(*clientConfig)

// WithCustomTypeProcessor registers a type processor for a database
// type (case insensitive).
func WithCustomTypeProcessor(typ string, processor func(any) any) ClientOption {
	return func(c *clientConfig) {
		t := strings.ToLower(typ)
		_, ok := c.typeProcessors[t]
		if ok {
			panic("processor already registered for type: " + t)
		}

		c.typeProcessors[t] = processor
	}
}

// WithIdentifierQuoter overrides the default double-quote identifier
// quoting (e.g. backticks for mysql).
func WithIdentifierQuoter(quote func(string) string) ClientOption {
	return func(c *clientConfig) {
		c.quoteIdent = quote
	}
}
