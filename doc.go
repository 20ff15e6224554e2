// Package dataflash drives SPI NOR flash chips (MX25R, W25Q, N25Q and
// compatibles) as a generic block device with distinct read, program
// and erase granularities. The chip must be erased before it can be
// programmed; erased bytes read back as 0xFF.
//
// # References:
//
// SPI Flash
//   - [N25Q32]: N25Q032A Micron Serial NOR Flash Memory datasheet (could not find the official public URL)
//   - [W25Q128]: W25Q128JV-DTR Winbond Serial Flash Memory (https://www.winbond.com/resource-files/W25Q128JV_DTR%20RevD%2012232024%20Plus.pdf)
//   - [MX25R64]: MX25R6435F Macronix Ultra Low Power Flash Memory (https://www.macronix.com/Lists/Datasheet/Attachments/8868/MX25R6435F,%20Wide%20Range,%2064Mb,%20v1.6.pdf)
//
// Standards
//   - [JESD216]: Serial Flash Discoverable Parameters (SFDP) (https://www.jedec.org/standards-documents/docs/jesd216b)
package dataflash
