package query

import "fmt"

// Handle parses text and dispatches it against e, returning the same
// response strings a user would see from the CLI or interactive mode.
func (e *Engine) Handle(text string) string {
	p := Parse(text)
	switch p.Kind {
	case KindWhyFailing:
		canonical, ok := e.graph.Resolve(p.Token)
		if !ok {
			return fmt.Sprintf("[ERROR] Service '%s' not found.", p.Token)
		}
		return e.WhyFailing(canonical)
	case KindLastNTicks:
		return e.LastNTicks(p.N)
	case KindTopImpacted:
		return e.TopImpacted()
	default:
		return Hint()
	}
}
