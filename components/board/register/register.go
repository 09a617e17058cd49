// Package register registers all relevant Boards
package register

import (
	// for boards.
	_ "go.viam.com/ultrasonic/components/board/commonsysfs"
	_ "go.viam.com/ultrasonic/components/board/fake"
	_ "go.viam.com/ultrasonic/components/board/genericlinux"
)
