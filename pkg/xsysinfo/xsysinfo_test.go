package xsysinfo_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/aquarius4k/aquarius/pkg/xsysinfo"
)

var _ = Describe("Device selection", func() {
	DescribeTable("NormalizeVendor",
		func(name, vendor string) {
			Expect(NormalizeVendor(name)).To(Equal(vendor))
		},
		Entry("nvidia", "NVIDIA Corporation", VendorNVIDIA),
		Entry("amd", "Advanced Micro Devices, Inc. [AMD/ATI]", VendorAMD),
		Entry("intel", "Intel Corporation", VendorIntel),
		Entry("other", "Matrox Electronics Systems Ltd.", VendorUnknown),
	)

	DescribeTable("DeviceForVendors",
		func(vendors []string, device string) {
			Expect(DeviceForVendors(vendors)).To(Equal(device))
		},
		Entry("no gpu", nil, DeviceCPU),
		Entry("unknown only", []string{VendorUnknown}, DeviceCPU),
		Entry("intel igpu", []string{VendorIntel}, DeviceXPU),
		Entry("nvidia wins over intel", []string{VendorIntel, VendorNVIDIA}, DeviceCUDA),
		Entry("amd wins over intel", []string{VendorAMD, VendorIntel}, DeviceROCm),
	)

	It("leaves explicit devices alone", func() {
		Expect(ResolveDevice("cuda")).To(Equal("cuda"))
		Expect(ResolveDevice("cpu")).To(Equal("cpu"))
	})

	It("always resolves auto to a concrete device", func() {
		Expect(ResolveDevice(DeviceAuto)).To(BeElementOf(DeviceCPU, DeviceCUDA, DeviceROCm, DeviceXPU))
	})

	It("summarizes the cpu as key value pairs", func() {
		summary := CPUSummary()
		Expect(len(summary) % 2).To(Equal(0))
		Expect(CPUPhysicalCores()).To(BeNumerically(">=", 1))
	})
})
