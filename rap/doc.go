// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
Package rap implements the Register Access Port: a serialized,
transport-agnostic interface for single-register and batched-register
reads and writes. It is the lowest layer of lms7core — chipctl is built
on top of it, and stream shares it with chipctl for control-plane writes.

A concrete transport (USB bulk, PCIe, or an embedded CPU's own SPI bus)
is out of scope for this module; RawTransport is the narrow contract such
a transport must satisfy. LoopbackPort is a complete in-memory
implementation used by the module's tests.
*/
package rap
