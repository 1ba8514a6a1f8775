package xsysinfo

import (
	"strings"
	"sync"

	"github.com/jaypipes/ghw"
	"github.com/jaypipes/ghw/pkg/gpu"
	"github.com/mudler/xlog"
)

// GPU vendor constants
const (
	VendorNVIDIA  = "nvidia"
	VendorAMD     = "amd"
	VendorIntel   = "intel"
	VendorUnknown = "unknown"
)

// Device names understood by the image backend.
const (
	DeviceAuto = "auto"
	DeviceCPU  = "cpu"
	DeviceCUDA = "cuda"
	DeviceROCm = "rocm"
	DeviceXPU  = "xpu"
)

var (
	gpuCache     []*gpu.GraphicsCard
	gpuCacheOnce sync.Once
	gpuCacheErr  error
)

func GPUs() ([]*gpu.GraphicsCard, error) {
	gpuCacheOnce.Do(func() {
		info, err := ghw.GPU()
		if err != nil {
			gpuCacheErr = err
			return
		}
		gpuCache = info.GraphicsCards
	})
	return gpuCache, gpuCacheErr
}

func cardVendor(card *gpu.GraphicsCard) string {
	if card == nil || card.DeviceInfo == nil || card.DeviceInfo.Vendor == nil {
		return VendorUnknown
	}
	return NormalizeVendor(card.DeviceInfo.Vendor.Name)
}

// NormalizeVendor maps a PCI vendor name to one of the vendor constants.
func NormalizeVendor(name string) string {
	name = strings.ToLower(name)
	switch {
	case strings.Contains(name, "nvidia"):
		return VendorNVIDIA
	case strings.Contains(name, "amd"), strings.Contains(name, "advanced micro devices"), strings.Contains(name, "ati "):
		return VendorAMD
	case strings.Contains(name, "intel"):
		return VendorIntel
	}
	return VendorUnknown
}

// DeviceForVendors picks the best device for the given GPU vendors, in
// order of preference NVIDIA, AMD, Intel.
func DeviceForVendors(vendors []string) string {
	best := DeviceCPU
	rank := 0
	for _, v := range vendors {
		switch {
		case v == VendorNVIDIA && rank < 3:
			best, rank = DeviceCUDA, 3
		case v == VendorAMD && rank < 2:
			best, rank = DeviceROCm, 2
		case v == VendorIntel && rank < 1:
			best, rank = DeviceXPU, 1
		}
	}
	return best
}

// DetectDevice inspects the local GPUs. It falls back to cpu when nothing
// usable is found or detection fails.
func DetectDevice() string {
	cards, err := GPUs()
	if err != nil {
		xlog.Debug("GPU detection failed", "error", err)
		return DeviceCPU
	}
	vendors := make([]string, 0, len(cards))
	for _, card := range cards {
		vendors = append(vendors, cardVendor(card))
	}
	device := DeviceForVendors(vendors)
	xlog.Debug("Detected device", "device", device, "vendors", vendors)
	return device
}

// ResolveDevice turns auto into a detected device and leaves any other
// value alone.
func ResolveDevice(device string) string {
	if device != DeviceAuto {
		return device
	}
	return DetectDevice()
}
