// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package d3d11

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	sdkVersion         = 7
	driverTypeHardware = 1
	driverTypeWARP     = 5
)

var (
	d3d11DLL = windows.NewLazySystemDLL("d3d11.dll")

	procD3D11CreateDevice = d3d11DLL.NewProc("D3D11CreateDevice")
)

// iidDeviceContext1 is the IID of ID3D11DeviceContext1.
var iidDeviceContext1 = windows.GUID{
	Data1: 0xbb2c6faa, Data2: 0xb5fb, Data3: 0x4082,
	Data4: [8]byte{0x8e, 0x6b, 0x38, 0x8b, 0x8c, 0xfa, 0x90, 0xe1},
}

// ErrorCode is a failed HRESULT.
type ErrorCode struct {
	Name string
	Code uint32
}

func (e ErrorCode) Error() string {
	return fmt.Sprintf("d3d11: %s: %#x", e.Name, e.Code)
}

type iUnknownVtbl struct {
	QueryInterface uintptr
	AddRef         uintptr
	Release        uintptr
}

type iUnknown struct {
	Vtbl *iUnknownVtbl
}

func release(obj unsafe.Pointer) {
	if obj == nil {
		return
	}
	u := (*iUnknown)(obj)
	syscall.SyscallN(u.Vtbl.Release, uintptr(obj))
}

// device is ID3D11Device.
type device struct {
	Vtbl *struct {
		iUnknownVtbl
		CreateBuffer                         uintptr
		CreateTexture1D                      uintptr
		CreateTexture2D                      uintptr
		CreateTexture3D                      uintptr
		CreateShaderResourceView             uintptr
		CreateUnorderedAccessView            uintptr
		CreateRenderTargetView               uintptr
		CreateDepthStencilView               uintptr
		CreateInputLayout                    uintptr
		CreateVertexShader                   uintptr
		CreateGeometryShader                 uintptr
		CreateGeometryShaderWithStreamOutput uintptr
		CreatePixelShader                    uintptr
		CreateHullShader                     uintptr
		CreateDomainShader                   uintptr
		CreateComputeShader                  uintptr
		CreateClassLinkage                   uintptr
		CreateBlendState                     uintptr
		CreateDepthStencilState              uintptr
		CreateRasterizerState                uintptr
		CreateSamplerState                   uintptr
		CreateQuery                          uintptr
		CreatePredicate                      uintptr
		CreateCounter                        uintptr
		CreateDeferredContext                uintptr
		OpenSharedResource                   uintptr
		CheckFormatSupport                   uintptr
		CheckMultisampleQualityLevels        uintptr
		CheckCounterInfo                     uintptr
		CheckCounter                         uintptr
		CheckFeatureSupport                  uintptr
		GetPrivateData                       uintptr
		SetPrivateData                       uintptr
		SetPrivateDataInterface              uintptr
		GetFeatureLevel                      uintptr
		GetCreationFlags                     uintptr
		GetDeviceRemovedReason               uintptr
		GetImmediateContext                  uintptr
		SetExceptionMode                     uintptr
		GetExceptionMode                     uintptr
	}
}

func (d *device) featureLevel() uint32 {
	r, _, _ := syscall.SyscallN(d.Vtbl.GetFeatureLevel, uintptr(unsafe.Pointer(d)))
	return uint32(r)
}

func (d *device) create(method uintptr, name string, desc unsafe.Pointer) (uintptr, error) {
	var obj uintptr
	r, _, _ := syscall.SyscallN(method,
		uintptr(unsafe.Pointer(d)),
		uintptr(desc),
		uintptr(unsafe.Pointer(&obj)),
	)
	if r != 0 {
		return 0, ErrorCode{Name: name, Code: uint32(r)}
	}
	return obj, nil
}

func (d *device) createRasterizerState(desc *rasterizerDesc) (uintptr, error) {
	return d.create(d.Vtbl.CreateRasterizerState, "CreateRasterizerState", unsafe.Pointer(desc))
}

func (d *device) createBlendState(desc *blendDesc) (uintptr, error) {
	return d.create(d.Vtbl.CreateBlendState, "CreateBlendState", unsafe.Pointer(desc))
}

func (d *device) createDepthStencilState(desc *depthStencilDesc) (uintptr, error) {
	return d.create(d.Vtbl.CreateDepthStencilState, "CreateDepthStencilState", unsafe.Pointer(desc))
}

// deviceContextVtbl is the ID3D11DeviceContext vtable followed by the
// ID3D11DeviceContext1 additions. The additions are only valid on a
// pointer obtained through QueryInterface.
type deviceContextVtbl struct {
	iUnknownVtbl
	GetDevice                                 uintptr
	GetPrivateData                            uintptr
	SetPrivateData                            uintptr
	SetPrivateDataInterface                   uintptr
	VSSetConstantBuffers                      uintptr
	PSSetShaderResources                      uintptr
	PSSetShader                               uintptr
	PSSetSamplers                             uintptr
	VSSetShader                               uintptr
	DrawIndexed                               uintptr
	Draw                                      uintptr
	Map                                       uintptr
	Unmap                                     uintptr
	PSSetConstantBuffers                      uintptr
	IASetInputLayout                          uintptr
	IASetVertexBuffers                        uintptr
	IASetIndexBuffer                          uintptr
	DrawIndexedInstanced                      uintptr
	DrawInstanced                             uintptr
	GSSetConstantBuffers                      uintptr
	GSSetShader                               uintptr
	IASetPrimitiveTopology                    uintptr
	VSSetShaderResources                      uintptr
	VSSetSamplers                             uintptr
	Begin                                     uintptr
	End                                       uintptr
	GetData                                   uintptr
	SetPredication                            uintptr
	GSSetShaderResources                      uintptr
	GSSetSamplers                             uintptr
	OMSetRenderTargets                        uintptr
	OMSetRenderTargetsAndUnorderedAccessViews uintptr
	OMSetBlendState                           uintptr
	OMSetDepthStencilState                    uintptr
	SOSetTargets                              uintptr
	DrawAuto                                  uintptr
	DrawIndexedInstancedIndirect              uintptr
	DrawInstancedIndirect                     uintptr
	Dispatch                                  uintptr
	DispatchIndirect                          uintptr
	RSSetState                                uintptr
	RSSetViewports                            uintptr
	RSSetScissorRects                         uintptr
	CopySubresourceRegion                     uintptr
	CopyResource                              uintptr
	UpdateSubresource                         uintptr
	CopyStructureCount                        uintptr
	ClearRenderTargetView                     uintptr
	ClearUnorderedAccessViewUint              uintptr
	ClearUnorderedAccessViewFloat             uintptr
	ClearDepthStencilView                     uintptr
	GenerateMips                              uintptr
	SetResourceMinLOD                         uintptr
	GetResourceMinLOD                         uintptr
	ResolveSubresource                        uintptr
	ExecuteCommandList                        uintptr
	HSSetShaderResources                      uintptr
	HSSetShader                               uintptr
	HSSetSamplers                             uintptr
	HSSetConstantBuffers                      uintptr
	DSSetShaderResources                      uintptr
	DSSetShader                               uintptr
	DSSetSamplers                             uintptr
	DSSetConstantBuffers                      uintptr
	CSSetShaderResources                      uintptr
	CSSetUnorderedAccessViews                 uintptr
	CSSetShader                               uintptr
	CSSetSamplers                             uintptr
	CSSetConstantBuffers                      uintptr
	VSGetConstantBuffers                      uintptr
	PSGetShaderResources                      uintptr
	PSGetShader                               uintptr
	PSGetSamplers                             uintptr
	VSGetShader                               uintptr
	PSGetConstantBuffers                      uintptr
	IAGetInputLayout                          uintptr
	IAGetVertexBuffers                        uintptr
	IAGetIndexBuffer                          uintptr
	GSGetConstantBuffers                      uintptr
	GSGetShader                               uintptr
	IAGetPrimitiveTopology                    uintptr
	VSGetShaderResources                      uintptr
	VSGetSamplers                             uintptr
	GetPredication                            uintptr
	GSGetShaderResources                      uintptr
	GSGetSamplers                             uintptr
	OMGetRenderTargets                        uintptr
	OMGetRenderTargetsAndUnorderedAccessViews uintptr
	OMGetBlendState                           uintptr
	OMGetDepthStencilState                    uintptr
	SOGetTargets                              uintptr
	RSGetState                                uintptr
	RSGetViewports                            uintptr
	RSGetScissorRects                         uintptr
	HSGetShaderResources                      uintptr
	HSGetShader                               uintptr
	HSGetSamplers                             uintptr
	HSGetConstantBuffers                      uintptr
	DSGetShaderResources                      uintptr
	DSGetShader                               uintptr
	DSGetSamplers                             uintptr
	DSGetConstantBuffers                      uintptr
	CSGetShaderResources                      uintptr
	CSGetUnorderedAccessViews                 uintptr
	CSGetShader                               uintptr
	CSGetSamplers                             uintptr
	CSGetConstantBuffers                      uintptr
	ClearState                                uintptr
	Flush                                     uintptr
	GetType                                   uintptr
	GetContextFlags                           uintptr
	FinishCommandList                         uintptr

	// ID3D11DeviceContext1
	CopySubresourceRegion1 uintptr
	UpdateSubresource1     uintptr
	DiscardResource        uintptr
	DiscardView            uintptr
	VSSetConstantBuffers1  uintptr
	HSSetConstantBuffers1  uintptr
	DSSetConstantBuffers1  uintptr
	GSSetConstantBuffers1  uintptr
	PSSetConstantBuffers1  uintptr
	CSSetConstantBuffers1  uintptr
}

// deviceContext is ID3D11DeviceContext or ID3D11DeviceContext1.
type deviceContext struct {
	Vtbl *deviceContextVtbl
}

func (c *deviceContext) this() uintptr {
	return uintptr(unsafe.Pointer(c))
}

func (c *deviceContext) queryContext1() *deviceContext {
	var ctx1 *deviceContext
	r, _, _ := syscall.SyscallN(c.Vtbl.QueryInterface,
		c.this(),
		uintptr(unsafe.Pointer(&iidDeviceContext1)),
		uintptr(unsafe.Pointer(&ctx1)),
	)
	if r != 0 {
		return nil
	}
	return ctx1
}

func createDevice(driverType uint32) (*device, *deviceContext, error) {
	if err := procD3D11CreateDevice.Find(); err != nil {
		return nil, nil, err
	}
	var (
		dev     *device
		ctx     *deviceContext
		featLvl uint32
	)
	r, _, _ := procD3D11CreateDevice.Call(
		0,                                 // pAdapter
		uintptr(driverType),               // DriverType
		0,                                 // Software
		0,                                 // Flags
		0,                                 // pFeatureLevels
		0,                                 // FeatureLevels
		sdkVersion,                        // SDKVersion
		uintptr(unsafe.Pointer(&dev)),     // ppDevice
		uintptr(unsafe.Pointer(&featLvl)), // pFeatureLevel
		uintptr(unsafe.Pointer(&ctx)),     // ppImmediateContext
	)
	if r != 0 {
		return nil, nil, ErrorCode{Name: "D3D11CreateDevice", Code: uint32(r)}
	}
	return dev, ctx, nil
}
