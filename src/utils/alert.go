package utils

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
)

// Alert emits an audible terminal bell. Used when a hedge order fails: the
// operator should hear it, not just find it in the logs.
func Alert() {
	if _, err := fmt.Fprint(os.Stderr, "\a"); err != nil {
		log.Warnf("Alert: failed to write bell: %v", err)
	}
}
