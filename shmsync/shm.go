package shmsync

import (
	"fmt"
	"os"
	"path/filepath"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/stdin2shm/stdin2shm/modbusline"
)

// ShmDir is where POSIX shared memory objects live on Linux.
const ShmDir = "/dev/shm"

// SharedMemory maps the four register banks of a Modbus server from POSIX
// shared memory objects named <prefix>DO, <prefix>DI, <prefix>AO and
// <prefix>AI. Analog registers are stored in host byte order.
type SharedMemory struct {
	names    [4]string
	mappings [4][]byte
	discrete [2][]byte
	analog   [2][]uint16
}

// OpenSharedMemory maps the register banks with the given name prefix from
// ShmDir.
func OpenSharedMemory(prefix string) (*SharedMemory, error) {
	return OpenSharedMemoryDir(ShmDir, prefix)
}

// OpenSharedMemoryDir maps the register banks from files in dir. The
// returned error is a *ResourceError.
func OpenSharedMemoryDir(dir, prefix string) (*SharedMemory, error) {
	shm := &SharedMemory{}
	for _, bank := range modbusline.Banks {
		name := prefix + bank.Suffix()
		mem, err := mapObject(filepath.Join(dir, name))
		if err != nil {
			shm.Close()
			return nil, &ResourceError{Name: name, Cause: err}
		}
		shm.names[bank] = name
		shm.mappings[bank] = mem

		if bank.IsDiscrete() {
			if len(mem) > modbusline.MaxRegisters {
				shm.Close()
				return nil, &ResourceError{Name: name, Cause: fmt.Errorf("size %d is too large for a modbus register bank", len(mem))}
			}
			shm.discrete[discreteIndex(bank)] = mem
			continue
		}

		if len(mem)%2 != 0 {
			shm.Close()
			return nil, &ResourceError{Name: name, Cause: fmt.Errorf("size %d is odd", len(mem))}
		}
		if len(mem)/2 > modbusline.MaxRegisters {
			shm.Close()
			return nil, &ResourceError{Name: name, Cause: fmt.Errorf("size %d is too large for a modbus register bank", len(mem))}
		}
		shm.analog[analogIndex(bank)] = words(mem)
	}
	return shm, nil
}

func mapObject(path string) ([]byte, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrap(err, "open shared memory")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "stat shared memory")
	}
	size := int(info.Size())
	if size == 0 {
		return []byte{}, nil
	}

	mem, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.Wrapf(err, "map %d bytes", size)
	}
	return mem, nil
}

// words reinterprets a mapping as host order 16 bit registers.
func words(mem []byte) []uint16 {
	if len(mem) == 0 {
		return []uint16{}
	}
	return unsafe.Slice((*uint16)(unsafe.Pointer(&mem[0])), len(mem)/2)
}

// Name returns the shared memory object name of a bank.
func (s *SharedMemory) Name(bank modbusline.Bank) string {
	return s.names[bank]
}

// Len implements Banks.
func (s *SharedMemory) Len(bank modbusline.Bank) int {
	return bankLen(bank, s.discrete, s.analog)
}

// Read implements Banks.
func (s *SharedMemory) Read(bank modbusline.Bank, addr int) uint16 {
	return bankRead(bank, addr, s.discrete, s.analog)
}

// Write implements Banks.
func (s *SharedMemory) Write(bank modbusline.Bank, addr int, word uint16) {
	bankWrite(bank, addr, word, s.discrete, s.analog)
}

// Close unmaps all banks. It is safe to call more than once.
func (s *SharedMemory) Close() error {
	var first error
	for i, mem := range s.mappings {
		if len(mem) > 0 {
			if err := unix.Munmap(mem); err != nil && first == nil {
				first = errors.Wrapf(err, "unmap %s", s.names[i])
			}
		}
		s.mappings[i] = nil
	}
	s.discrete = [2][]byte{}
	s.analog = [2][]uint16{}
	return first
}
