//go:build armbe || arm64be || m68k || mips || mips64 || mips64p32 || ppc || ppc64 || s390 || s390x || shbe || sparc || sparc64

package endian

// Big reports whether the host stores multi-byte numbers most significant byte first.
const Big = true
