package testfixture

import "encoding/binary"

// DevSetting builds a 140-byte DEVSETTING.DAT buffer.
func DevSetting(brand, app, version string, magic uint32) []byte {
	data := make([]byte, 140)
	le := binary.LittleEndian
	le.PutUint32(data[0:], 0x60)
	copy(data[4:32], brand)
	copy(data[36:68], app)
	copy(data[68:100], version)
	le.PutUint32(data[100:], 0x20)
	le.PutUint32(data[104:], magic)
	return data
}

// ValidDevSetting builds a DEVSETTING.DAT buffer that passes every check.
func ValidDevSetting() []byte {
	return DevSetting("PIONEER DJ", "rekordbox", "6.8.5", 0x12345678)
}

// DJProfile builds a 160-byte djprofile.nxs buffer with name at 0x20.
func DJProfile(name string) []byte {
	data := make([]byte, 160)
	copy(data[0x20:0x40], name)
	return data
}
