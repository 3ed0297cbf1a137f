package serialport

// Linux termios ioctl request numbers (asm-generic/ioctls.h). Only the
// plain (non-BOTHER) get/set pair is needed: B1152000 is already
// representable in the classic CBAUD encoding, so Termios2/BOTHER
// support isn't required for this adapter.
var (
	tcgets = uintptr(0x5401)
	tcsets = uintptr(0x5402)
)
