//go:build celtenv_tmp_env

package celtenv

var tmpForceSinglePassEnabled = tmpGetenv("CELTENV_TMP_FORCE_SINGLE_PASS") == "1"
var tmpCoarseDumpEnabled = tmpGetenv("CELTENV_TMP_COARSE_DUMP") == "1"
