package entity

// Cell and turn values as they travel over the wire.
const (
	EmptyCell = 0
	Player1   = 1
	Player2   = 2
)

// Outcome values returned by Outcome.
const (
	OutcomeUndecided = 0
	OutcomeDraw      = 3
)

var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is the authoritative 3x3 game state: nine cells in left-to-right,
// top-to-bottom order plus the player whose turn it is. It carries no I/O.
type Board struct {
	Cells [9]int `json:"cells"`
	Turn  int    `json:"turn"`
}

func NewBoard() *Board {
	return &Board{Turn: Player1}
}

// TryMove - places player's mark on the given cell if the index is in range,
// the cell is empty and it is that player's turn. On success the turn flips
// and true is returned; otherwise the board is left untouched. An invalid
// move is a plain signal, never an error.
func (that *Board) TryMove(cell, player int) bool {
	if cell < 0 || cell >= len(that.Cells) {
		return false
	}

	if that.Cells[cell] != EmptyCell {
		return false
	}

	if that.Turn != player {
		return false
	}

	that.Cells[cell] = player
	that.switchTurn()

	return true
}

// Outcome - scans the rows, columns and diagonals for three equal non-empty
// cells and returns the winning player. A full board without a winner is a
// draw; anything else is undecided.
func (that *Board) Outcome() int {
	for _, combo := range WinCombos {
		a, b, c := that.Cells[combo[0]], that.Cells[combo[1]], that.Cells[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	for _, cell := range that.Cells {
		if cell == EmptyCell {
			return OutcomeUndecided
		}
	}

	return OutcomeDraw
}

func (that *Board) switchTurn() {
	if that.Turn == Player1 {
		that.Turn = Player2
	} else {
		that.Turn = Player1
	}
}
