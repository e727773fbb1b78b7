package pkg

// Action labels shown by the terminal client.
type Action string

const (
	ActionNewGame  Action = "New Game"
	ActionHistory         = "History"
	ActionExit            = "Exit"
	ActionYourTurn        = "Your move"
	ActionWaiting         = "Waiting"
	ActionWin             = "Win"
	ActionLose            = "Lose"
	ActionObserver        = "Observing"
)
