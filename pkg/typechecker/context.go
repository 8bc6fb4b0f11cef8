package typechecker

import "klox/interpreter-go/pkg/types"

// functionFrame tracks the function whose body is being constrained.
type functionFrame struct {
	returnType types.Type
	returns    int
}

func (c *Checker) pushFunction(ret types.Type) {
	c.frames = append(c.frames, &functionFrame{returnType: ret})
}

// popFunction restores the enclosing frame and reports whether the body
// contained any return statement.
func (c *Checker) popFunction() bool {
	if len(c.frames) == 0 {
		return false
	}
	last := c.frames[len(c.frames)-1]
	c.frames = c.frames[:len(c.frames)-1]
	return last.returns > 0
}

func (c *Checker) currentFunction() (*functionFrame, bool) {
	if len(c.frames) == 0 {
		return nil, false
	}
	return c.frames[len(c.frames)-1], true
}
