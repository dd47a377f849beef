package hub

import "errors"

// ErrQueueClosed is returned by Client.Send once the owning session has
// torn down its outbound queue.
var ErrQueueClosed = errors.New("hub: client queue closed")
