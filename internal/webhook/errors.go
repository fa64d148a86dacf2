package webhook

import "errors"

// ErrChannelRequired is returned when a webhook call omits the channel
// parameter that names the join target.
var ErrChannelRequired = errors.New("channel parameter is required")
