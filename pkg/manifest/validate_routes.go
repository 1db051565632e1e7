package manifest

import "fmt"

// validateRoutes normalizes and checks each route in order.
func (c *Config) validateRoutes() error {
	for i := range c.Routes {
		if err := c.Routes[i].normalize(); err != nil {
			return fmt.Errorf("route %d: %w", i, err)
		}
		if err := c.Routes[i].validate(); err != nil {
			return fmt.Errorf("route %d (%s %s): %w", i, c.Routes[i].Method, c.Routes[i].Path, err)
		}
	}
	return nil
}

// Shadowed returns the indexes of routes that repeat an earlier
// (method, path) pair and can therefore never be dispatched to.
func (c *Config) Shadowed() []int {
	seen := map[[2]string]bool{}
	var out []int
	for i, rt := range c.Routes {
		k := [2]string{rt.Method, rt.Path}
		if seen[k] {
			out = append(out, i)
			continue
		}
		seen[k] = true
	}
	return out
}
