// Package cache stores build checkpoints between builds.
//
// A checkpoint is the exported OCI archive of a build container after a
// completed step, keyed by the digest chain of every step up to and
// including it. The build package consults the store to find the longest
// already-built prefix of a descriptor and resumes from that archive
// instead of the base image, which is what makes an unchanged
// dependency-install prefix free on rebuilds.
//
// Checkpoints are committed with an atomic rename so a partially written
// archive is never observed. The store has no eviction policy; Prune
// removes everything.
package cache
