//go:build !celtenv_tmp_env

package celtenv

// Production/default toggles: compile out temporary tuning/debug branches.
const tmpForceSinglePassEnabled = false
const tmpCoarseDumpEnabled = false
