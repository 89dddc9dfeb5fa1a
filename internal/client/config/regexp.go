package config

import "regexp"

var (
	buildRe = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
	pathRe  = regexp.MustCompile(`^/[^\s]*$`)
)
