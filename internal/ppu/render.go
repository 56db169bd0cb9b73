package ppu

// drawScanline renders one 256-pixel row of the framebuffer: background
// first, then sprites in front of it. It reports the (x, y) of a
// sprite-0/background collision, if one occurred on this row.
func (p *PPU) drawScanline(mem Memory, row []uint8, scanline uint8) (x, y uint16, ok bool) {
	p.drawBackground(mem, row, uint16(p.scrollX), uint16(p.scrollY), 256, 1)
	return p.drawSprites(mem, row, 256, 1, scanline)
}

// drawBackground paints a w×h window of the 512×480 torus-wrapped
// nametable space starting at (x, y), using 8×8 tile lookups across a
// 34-wide grid so partial tiles at both screen edges are covered.
func (p *PPU) drawBackground(mem Memory, output []uint8, x, y, w, h uint16) {
	nametable := p.ctrl & 0x03

	for i := range output {
		output[i] = p.Palette[0]
	}

	nametableBaseX := uint16(0)
	if nametable&1 != 0 {
		nametableBaseX = 0x100
	}
	nametableBaseX = (nametableBaseX + x - 8) % 512

	nametableBaseY := uint16(0)
	if nametable&2 != 0 {
		nametableBaseY = 0xf0
	}
	nametableBaseY = (nametableBaseY + y) % 480

	tilesW := uint16(1)
	if w >= 8 {
		tilesW = (w / 8) + 2
	}
	tilesH := uint16(1)
	if h >= 8 {
		tilesH = h / 8
	}

	for a := uint16(0); a < tilesW*tilesH; a++ {
		nametableX := (nametableBaseX - nametableBaseX%8) + (a%34)*8
		nametableY := (nametableBaseY - nametableBaseY%8) + (a/34)*8

		onBottom := (nametableY % 480) >= 240
		onRight := (nametableX % 512) >= 256
		var currentNametable uint16
		switch {
		case !onBottom && !onRight:
			currentNametable = 0
		case !onBottom && onRight:
			currentNametable = 1
		case onBottom && !onRight:
			currentNametable = 2
		default:
			currentNametable = 3
		}

		tile := mem.PPURead(0x2000 + currentNametable*0x400 + ((nametableX % 256) / 8) + 32*((nametableY%240)/8))

		paletteIndex := 8*((nametableY%240)/32) + ((nametableX & 0xff) / 32)
		paletteBitSelect := (2*(((nametableY%240)/16)%2) + (((nametableX & 0xff) / 16) % 2)) * 2
		currentPalette := (mem.PPURead(0x2000+currentNametable*0x400+0x3c0+paletteIndex) >> paletteBitSelect) & 3

		p.drawTileSection(mem,
			int16(nametableX)-int16(nametableBaseX)-8,
			int16(nametableY)-int16(nametableBaseY),
			currentPalette,
			(p.ctrl&0x10)>>4,
			tile,
			false, false,
			p.mask&maskShowBackgroundLeft == 0,
			true, false,
			output, w, h, 0,
		)
	}
}

// drawSprites paints OAM sprites over the row, iterating index 63 down
// to 0 so low-index sprites are drawn last and therefore win on
// overlap, matching hardware sprite priority.
func (p *PPU) drawSprites(mem Memory, output []uint8, w, h uint16, scanline uint8) (x, y uint16, detected bool) {
	if p.mask&maskShowSprite == 0 {
		return 0, 0, false
	}

	spriteSize := p.ctrl & (1 << 5)
	for i := 63; i >= 0; i-- {
		posY := p.OAM[i*4]
		tile := p.OAM[i*4+1]
		byte3 := p.OAM[i*4+2]
		posX := p.OAM[i*4+3]

		if spriteSize == 0 {
			sx, sy, ok := p.drawTileSection(mem,
				int16(posX), int16(posY)-int16(scanline),
				(byte3&0x3)+4,
				(p.ctrl&0x8)>>3,
				tile,
				byte3&0x40 != 0, byte3&0x80 != 0,
				p.mask&maskShowSpriteLeft == 0,
				false, i == 0,
				output, w, h, scanline,
			)
			if !detected && ok {
				x, y, detected = sx, sy, true
			}
			continue
		}

		flipY := byte3&0x80 != 0
		topTile := tile &^ 0x1
		if flipY {
			topTile = tile | 0x1
		}
		sx, sy, ok := p.drawTileSection(mem,
			int16(posX), int16(posY)-int16(scanline),
			(byte3&0x3)+4,
			tile&0x1,
			topTile,
			byte3&0x40 != 0, flipY,
			p.mask&maskShowSpriteLeft == 0,
			false, i == 0,
			output, w, h, scanline,
		)
		if !detected && ok {
			x, y, detected = sx, sy, true
		}

		bottomTile := tile | 0x1
		if flipY {
			bottomTile = tile &^ 0x1
		}
		sx, sy, ok = p.drawTileSection(mem,
			int16(posX), int16(posY)+8-int16(scanline),
			(byte3&0x3)+4,
			tile&0x1,
			bottomTile,
			byte3&0x40 != 0, flipY,
			p.mask&maskShowSpriteLeft == 0,
			false, i == 0,
			output, w, h, scanline,
		)
		if !detected && ok {
			x, y, detected = sx, sy, true
		}
	}

	return x, y, detected
}

// drawTileSection blits one 8x8 pattern-table tile into output at
// (x, y), optionally flipped, masking the left 8 columns when the
// corresponding PPUMASK "show in leftmost 8 pixels" bit is clear.
// Opaque background pixels stash their top bit (0x80) in the
// framebuffer so a later sprite-0 check can detect the collision.
func (p *PPU) drawTileSection(mem Memory, x, y int16, palette, patternTable, tile uint8, flipX, flipY, maskLeft, background, sprite0 bool, framebuffer []uint8, w, h uint16, scanline uint8) (hitX, hitY uint16, hit bool) {
	for i := int16(0); i < 8; i++ {
		byte1 := mem.PPURead(uint16(i) + 16*uint16(tile) + 0x1000*uint16(patternTable))
		byte2 := mem.PPURead(uint16(i) + 16*uint16(tile) + 0x1000*uint16(patternTable) + 8)

		for a := int16(0); a < 8; a++ {
			mask := uint8(0x80 >> uint(a))

			var colorIndex uint16
			if byte1&mask != 0 {
				colorIndex |= 1
			}
			if byte2&mask != 0 {
				colorIndex |= 2
			}

			screenX := int32(x) + int32(a)
			if flipX {
				screenX = int32(x) + 7 - int32(a)
			}
			screenY := int32(y) + int32(i)
			if flipY {
				screenY = int32(y) + 7 - int32(i)
			}

			if screenX < 0 || screenY < 0 || screenX >= int32(w) || screenY >= int32(h) {
				continue
			}
			if maskLeft && screenX < 8 {
				continue
			}
			if colorIndex == 0 {
				continue
			}

			color := p.Palette[4*uint16(palette)+colorIndex]
			idx := 256*screenY + screenX

			if sprite0 && !hit {
				if framebuffer[idx]&0x80 != 0 {
					hitX, hitY, hit = uint16(screenX), uint16(scanline)+uint16(screenY), true
				}
			}

			framebuffer[idx] = color
			if background {
				framebuffer[idx] |= 0x80
			}
		}
	}

	return hitX, hitY, hit
}
