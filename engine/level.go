package engine

// Per-level transition logic. For every candle the loop walks the ladder in
// ascending price order and, per level, runs the entry check before the exit
// check. That fixed order is load-bearing: it makes runs reproducible and
// bounds each level to at most one open+close pair per candle.

// stepLevel runs one level's transitions against one candle.
func (s *simulation) stepLevel(i int, c Candle) {
	if s.spot {
		s.stepSpot(i, c)
		return
	}

	lvl := &s.levels[i]
	high, low := c.high(), c.low()

	// Entry check. The long and short conditions compare the level against
	// the close from opposite sides, so at most one can hold.
	if lvl.Position == PositionFlat {
		switch {
		case low <= lvl.Price && lvl.Price < c.Price:
			s.openLong(lvl, c)
		case high >= lvl.Price && lvl.Price > c.Price:
			s.openShort(lvl, c)
		}
	}

	// Exit check. A long exits one level up, a short one level down; the
	// edge levels in each direction can therefore never close and are left
	// to the entry rules above.
	switch lvl.Position {
	case PositionLong:
		if i < len(s.levels)-1 && high >= s.levels[i+1].Price {
			s.closeLong(lvl, s.levels[i+1].Price, c)
		}
	case PositionShort:
		if i > 0 && low <= s.levels[i-1].Price {
			s.closeShort(lvl, s.levels[i-1].Price, c)
		}
	}
}

func (s *simulation) openLong(lvl *GridLevel, c Candle) {
	entry := lvl.Price * (1 + s.run.Slippage)
	size := s.capitalPerLevel / entry
	fee := s.capitalPerLevel * s.run.TakerFee
	s.balance -= fee

	lvl.Position = PositionLong
	lvl.EntryPrice = entry
	lvl.Size = size

	s.emit(c, Trade{
		Price:        entry,
		Type:         TradeBuy,
		Side:         SideLong,
		Fees:         fee,
		NetProfit:    -fee,
		BalanceAfter: s.balance,
	})
}

func (s *simulation) closeLong(lvl *GridLevel, exitLevel float64, c Candle) {
	exit := exitLevel * (1 - s.run.Slippage)
	positionValue := lvl.Size * exit
	gross := positionValue - s.capitalPerLevel
	fee := positionValue * s.run.MakerFee
	net := gross - fee
	s.balance += net

	s.resetLevel(lvl)
	s.emit(c, Trade{
		Price:        exit,
		Type:         TradeSell,
		Side:         SideLong,
		GrossProfit:  gross,
		Fees:         fee,
		NetProfit:    net,
		BalanceAfter: s.balance,
	})
}

func (s *simulation) openShort(lvl *GridLevel, c Candle) {
	entry := lvl.Price * (1 - s.run.Slippage)
	size := s.capitalPerLevel / entry
	fee := s.capitalPerLevel * s.run.TakerFee
	s.balance -= fee

	lvl.Position = PositionShort
	lvl.EntryPrice = entry
	lvl.Size = size

	s.emit(c, Trade{
		Price:        entry,
		Type:         TradeSell,
		Side:         SideShort,
		Fees:         fee,
		NetProfit:    -fee,
		BalanceAfter: s.balance,
	})
}

func (s *simulation) closeShort(lvl *GridLevel, exitLevel float64, c Candle) {
	exit := exitLevel * (1 + s.run.Slippage)
	positionValue := lvl.Size * exit
	gross := s.capitalPerLevel - positionValue
	fee := positionValue * s.run.MakerFee
	net := gross - fee
	s.balance += net

	s.resetLevel(lvl)
	s.emit(c, Trade{
		Price:        exit,
		Type:         TradeBuy,
		Side:         SideShort,
		GrossProfit:  gross,
		Fees:         fee,
		NetProfit:    net,
		BalanceAfter: s.balance,
	})
}

// stepSpot is the degenerate spot variant: long-only, one unit per level, no
// fees or slippage. A level opens when price touches it from above and closes
// one level up, so the topmost level never opens.
func (s *simulation) stepSpot(i int, c Candle) {
	lvl := &s.levels[i]

	if lvl.Position == PositionFlat && i < len(s.levels)-1 && c.low() <= lvl.Price {
		lvl.Position = PositionLong
		lvl.EntryPrice = lvl.Price
		lvl.Size = 1
		s.emit(c, Trade{
			Price:        lvl.Price,
			Type:         TradeBuy,
			Side:         SideLong,
			BalanceAfter: s.balance,
		})
	}

	if lvl.Position == PositionLong && i < len(s.levels)-1 && c.high() >= s.levels[i+1].Price {
		sell := s.levels[i+1].Price
		net := sell - lvl.EntryPrice
		s.balance += net

		s.resetLevel(lvl)
		s.emit(c, Trade{
			Price:        sell,
			Type:         TradeSell,
			Side:         SideLong,
			GrossProfit:  net,
			NetProfit:    net,
			BalanceAfter: s.balance,
		})
	}
}

func (s *simulation) resetLevel(lvl *GridLevel) {
	lvl.Position = PositionFlat
	lvl.EntryPrice = 0
	lvl.Size = 0
}

func (s *simulation) emit(c Candle, t Trade) {
	t.Time = c.Time
	t.Timestamp = c.Timestamp
	s.cumPnL += t.NetProfit
	s.trades = append(s.trades, t)
}
