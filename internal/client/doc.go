// Package client implements the CLI side of the daemon protocol.
//
// A [Client] dials the daemon's Unix socket and performs single
// request-response exchanges of newline-delimited JSON envelopes. Each
// exported method corresponds to one daemon command.
//
// Example usage:
//
//	c := client.New("")
//
//	status, err := c.Status()
//	if err != nil {
//	    return err
//	}
//
//	fmt.Printf("daemon running, pid %d\n", status.Pid)
package client
