// Package manifest defines the declarative build descriptor.
//
// A descriptor is a YAML document that pins a base image, lists build
// steps (file copies and shell commands) in execution order, and declares
// the launch configuration for the exported image: the foreground command,
// working directory, environment, and the TCP port the launched process
// binds.
//
// Auxiliary file trees that live outside the primary build context are
// declared as named contexts and referenced from copy steps with a
// "name:path" source. A copy source can never escape its context root;
// descriptors that try are rejected at load time.
//
// Example descriptor:
//
//	image: foodgram-backend
//	from: docker.io/library/python:3.10
//	workdir: /app
//	port: 7500
//	contexts:
//	  data: ../data
//	steps:
//	  - copy: requirements.txt requirements.txt
//	  - run: pip install --no-cache-dir -r requirements.txt
//	  - copy: . .
//	  - copy: "data:. /data"
//	command: ["gunicorn", "--bind", "0.0.0.0:7500", "foodgram.wsgi"]
package manifest
