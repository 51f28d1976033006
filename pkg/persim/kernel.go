package persim

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/matzehuels/moltda/pkg/errors"
)

// Kernel selects the smoothing kernel. Only the Gaussian is implemented.
type Kernel uint8

const (
	// KernelGaussian spreads each point as an isotropic normal distribution.
	KernelGaussian Kernel = iota
)

// KernelNameGaussian is the name accepted by [ParseKernel].
const KernelNameGaussian = "gaussian"

// ParseKernel returns the Kernel named by s, or UNSUPPORTED_KERNEL.
func ParseKernel(s string) (Kernel, error) {
	if s == KernelNameGaussian {
		return KernelGaussian, nil
	}
	return 0, errors.New(errors.ErrCodeUnsupportedKernel, "kernel type %q not implemented", s)
}

// String returns the kernel name.
func (k Kernel) String() string {
	if k == KernelGaussian {
		return KernelNameGaussian
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k Kernel) MarshalText() ([]byte, error) {
	if err := k.validate(); err != nil {
		return nil, err
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kernel) UnmarshalText(b []byte) error {
	parsed, err := ParseKernel(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func (k Kernel) validate() error {
	if k == KernelGaussian {
		return nil
	}
	return errors.New(errors.ErrCodeUnsupportedKernel, "kernel type %d not implemented", uint8(k))
}

// binMasses fills dst[i] with the probability mass the kernel centred at mean
// with spread sigma puts between lower[i] and upper[i].
func (k Kernel) binMasses(dst, lower, upper []float64, mean, sigma float64) {
	switch k {
	case KernelGaussian:
		n := distuv.Normal{Mu: mean, Sigma: sigma}
		for i := range dst {
			dst[i] = n.CDF(upper[i]) - n.CDF(lower[i])
		}
	}
}
