// Package config resolves branchlink settings from layered sources:
// built-in defaults, the global config file, the per-repository
// .branchlink.yaml, and BRANCHLINK_* environment variables, in increasing
// priority. Resolution never fails; bad files produce warnings and the
// remaining layers still apply.
package config
