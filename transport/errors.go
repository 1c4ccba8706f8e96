// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transport

import "fmt"

func unknownTransportError(name string) error {
	return fmt.Errorf("transport: unknown transport %q", name)
}
