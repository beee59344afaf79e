// Package request decodes the forkd wire request.
//
// A client sends exactly one message per connection, read by the daemon in a
// single receive call of at most [Capacity] bytes:
//
//	<command>\0[<workdir>\0]
//
// The command is split on single ASCII spaces into an argument vector. There
// is no quoting and no escaping; consecutive spaces produce empty arguments.
// A read that fills the whole buffer is rejected with [ErrRequestTooLarge]
// rather than executed truncated.
//
// Example usage:
//
//	req, err := request.Read(conn)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(req.Argv, req.Dir)
package request
