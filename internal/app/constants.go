// Package app implements a best-effort grammar for DNP3 application layer
// fragments. It distinguishes three outcomes: a decoded Fragment, a
// recognizable-but-invalid message reported as a diagnostic token, and an
// outright parse failure.
package app

// FunctionCode is the application layer function octet.
type FunctionCode uint8

// Request function codes.
const (
	FuncConfirm           FunctionCode = 0x00
	FuncRead              FunctionCode = 0x01
	FuncWrite             FunctionCode = 0x02
	FuncSelect            FunctionCode = 0x03
	FuncOperate           FunctionCode = 0x04
	FuncDirectOperate     FunctionCode = 0x05
	FuncDirectOperateNR   FunctionCode = 0x06
	FuncImmedFreeze       FunctionCode = 0x07
	FuncImmedFreezeNR     FunctionCode = 0x08
	FuncFreezeClear       FunctionCode = 0x09
	FuncFreezeClearNR     FunctionCode = 0x0A
	FuncFreezeAtTime      FunctionCode = 0x0B
	FuncFreezeAtTimeNR    FunctionCode = 0x0C
	FuncColdRestart       FunctionCode = 0x0D
	FuncWarmRestart       FunctionCode = 0x0E
	FuncInitializeData    FunctionCode = 0x0F
	FuncInitializeAppl    FunctionCode = 0x10
	FuncStartAppl         FunctionCode = 0x11
	FuncStopAppl          FunctionCode = 0x12
	FuncSaveConfig        FunctionCode = 0x13
	FuncEnableUnsolicited FunctionCode = 0x14
	FuncDisableUnsol      FunctionCode = 0x15
	FuncAssignClass       FunctionCode = 0x16
	FuncDelayMeasure      FunctionCode = 0x17
	FuncRecordCurrentTime FunctionCode = 0x18
	FuncOpenFile          FunctionCode = 0x19
	FuncCloseFile         FunctionCode = 0x1A
	FuncDeleteFile        FunctionCode = 0x1B
	FuncGetFileInfo       FunctionCode = 0x1C
	FuncAuthenticateFile  FunctionCode = 0x1D
	FuncAbortFile         FunctionCode = 0x1E
	FuncActivateConfig    FunctionCode = 0x1F
	FuncAuthenticateReq   FunctionCode = 0x20
	FuncAuthReqNoAck      FunctionCode = 0x21
)

// Response function codes.
const (
	FuncResponse         FunctionCode = 0x81
	FuncUnsolicitedResp  FunctionCode = 0x82
	FuncAuthenticateResp FunctionCode = 0x83
)

var requestFuncNames = []string{
	"CONFIRM", "READ", "WRITE", "SELECT", "OPERATE", "DIRECT_OPERATE",
	"DIRECT_OPERATE_NR", "IMMED_FREEZE", "IMMED_FREEZE_NR", "FREEZE_CLEAR",
	"FREEZE_CLEAR_NR", "FREEZE_AT_TIME", "FREEZE_AT_TIME_NR", "COLD_RESTART",
	"WARM_RESTART", "INITIALIZE_DATA", "INITIALIZE_APPL", "START_APPL",
	"STOP_APPL", "SAVE_CONFIG", "ENABLE_UNSOLICITED", "DISABLE_UNSOLICITED",
	"ASSIGN_CLASS", "DELAY_MEASURE", "RECORD_CURRENT_TIME", "OPEN_FILE",
	"CLOSE_FILE", "DELETE_FILE", "GET_FILE_INFO", "AUTHENTICATE_FILE",
	"ABORT_FILE", "ACTIVATE_CONFIG", "AUTHENTICATE_REQ", "AUTH_REQ_NO_ACK",
}

var responseFuncNames = map[FunctionCode]string{
	FuncResponse:         "RESPONSE",
	FuncUnsolicitedResp:  "UNSOLICITED_RESPONSE",
	FuncAuthenticateResp: "AUTHENTICATE_RESP",
}

// String returns the standard function name, or "RESERVED" when the code
// has none.
func (f FunctionCode) String() string {
	if int(f) < len(requestFuncNames) {
		return requestFuncNames[f]
	}

	if name, ok := responseFuncNames[f]; ok {
		return name
	}

	return "RESERVED"
}

// Application control octet bits.
const (
	CtrlFIR uint8 = 0x80
	CtrlFIN uint8 = 0x40
	CtrlCON uint8 = 0x20
	CtrlUNS uint8 = 0x10
	CtrlSeq uint8 = 0x0F
)

// Control is the decoded application control octet.
type Control struct {
	Fir bool
	Fin bool
	Con bool
	Uns bool
	Seq uint8 // 0..15
}

func parseControl(b uint8) Control {
	return Control{
		Fir: b&CtrlFIR != 0,
		Fin: b&CtrlFIN != 0,
		Con: b&CtrlCON != 0,
		Uns: b&CtrlUNS != 0,
		Seq: b & CtrlSeq,
	}
}

// IIN is the internal indications field carried by responses.
type IIN uint16

// IIN bits, first octet in the low byte.
const (
	IINBroadcast     IIN = 0x0001
	IINClass1Events  IIN = 0x0002
	IINClass2Events  IIN = 0x0004
	IINClass3Events  IIN = 0x0008
	IINNeedTime      IIN = 0x0010
	IINLocalControl  IIN = 0x0020
	IINDeviceTrouble IIN = 0x0040
	IINDeviceRestart IIN = 0x0080

	IINFuncNotSupported IIN = 0x0100
	IINObjectUnknown    IIN = 0x0200
	IINParamError       IIN = 0x0400
	IINEventBufOverflow IIN = 0x0800
	IINAlreadyExecuting IIN = 0x1000
	IINConfigCorrupt    IIN = 0x2000
)

var iinNames = []struct {
	bit  IIN
	name string
}{
	{IINBroadcast, "broadcast"},
	{IINClass1Events, "class1_events"},
	{IINClass2Events, "class2_events"},
	{IINClass3Events, "class3_events"},
	{IINNeedTime, "need_time"},
	{IINLocalControl, "local_control"},
	{IINDeviceTrouble, "device_trouble"},
	{IINDeviceRestart, "device_restart"},
	{IINFuncNotSupported, "func_not_supported"},
	{IINObjectUnknown, "object_unknown"},
	{IINParamError, "param_error"},
	{IINEventBufOverflow, "event_buffer_overflow"},
	{IINAlreadyExecuting, "already_executing"},
	{IINConfigCorrupt, "config_corrupt"},
}

// Names lists the set bits in standard order.
func (i IIN) Names() []string {
	var out []string
	for _, e := range iinNames {
		if i&e.bit != 0 {
			out = append(out, e.name)
		}
	}

	return out
}
