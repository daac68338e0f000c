// Package build executes build descriptors against container runtimes.
//
// A descriptor is a linear sequence of steps backed by a single build
// container created from a pinned base image. The pipeline verifies the
// build context directories, computes a cache key for every step, resumes
// from the deepest committed checkpoint, dispatches the remaining steps
// (shell commands and file copies), and exports the final state as an OCI
// image with the descriptor's launch configuration applied.
//
// Container operations are delegated to the runtime package, checkpoint
// storage to the cache package. Step state (environment variables, working
// directory, shell) is accumulated across steps.
//
// Example usage:
//
//	result, err := build.Run(ctx, rt, build.Options{
//	    Manifest: m,
//	    Root:     "/srv/src/backend",
//	    Contexts: map[string]string{"data": "/srv/src/data"},
//	    Output:   "dist",
//	})
//	if err != nil {
//	    return err
//	}
package build
