// Package runtime manages containers backed by containerd.
//
// A [Runtime] connects to a containerd daemon and provides image pull,
// import, and container creation. Base images are pulled from their
// registry; checkpoint archives are imported, tagged with a deterministic
// content hash, and unpacked for the target platform.
//
// Build containers wrap a long-running containerd task: commands are
// executed inside via task exec, files are copied in and out as tar
// streams, and the filesystem state can be committed and exported as an
// OCI archive with the launch configuration (command, working directory,
// environment, exposed ports) applied to the image config. Serve
// containers instead run the image's configured command as the task
// itself; when that process exits, the container stops and its exit code
// is retained.
//
// Example usage:
//
//	rt, err := runtime.New("/run/containerd/containerd.sock", "wharfd")
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	if err := rt.PullImage(ctx, "docker.io/library/python:3.10", "linux/amd64"); err != nil {
//	    return err
//	}
//
//	ctr, err := rt.StartFromImage(ctx, "docker.io/library/python:3.10", "build-1", "linux/amd64")
//	if err != nil {
//	    return err
//	}
//	defer ctr.Destroy(ctx)
//
//	result, err := ctr.Exec(ctx, "/bin/sh", "pip install -r requirements.txt", nil, "/app")
//	if err != nil {
//	    return err
//	}
//
//	err = ctr.Export(ctx, "dist", runtime.ImageConfig{
//	    Command:    []string{"gunicorn", "--bind", "0.0.0.0:7500", "foodgram.wsgi"},
//	    WorkingDir: "/app",
//	    Ports:      []string{"7500/tcp"},
//	})
package runtime
