// Package register registers all the built-in local planner plugins.
package register

import (
	// register critics.
	_ "go.viam.com/dwb/motionplan/dwb/critics"
	// register trajectory generators.
	_ "go.viam.com/dwb/motionplan/dwb/generators"
	// register goal checkers.
	_ "go.viam.com/dwb/motionplan/dwb/goalcheckers"
)
